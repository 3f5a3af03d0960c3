// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Parameter validation errors.
var (
	// ErrEmptyPrompt is returned when a generation is requested without a prompt.
	ErrEmptyPrompt = errors.New("backend: empty prompt")

	// ErrEmptyModelPath is returned when no model file is configured.
	ErrEmptyModelPath = errors.New("backend: empty model path")

	// ErrUnknownValue is returned when an enumerated setting has an
	// unrecognized spelling.
	ErrUnknownValue = errors.New("backend: unknown value")
)

// Params holds everything a generation backend needs for one image.
//
// The field tags are the keys used by settings files. Width and Height are
// not read from settings; the run controller sets them to the size of the
// area being processed.
type Params struct {
	Mode    Mode `toml:"mode" yaml:"mode"`
	Verbose bool `toml:"verbose" yaml:"verbose"`

	// Model files.
	ModelPath               string `toml:"model_path" yaml:"model_path"`
	ClipLPath               string `toml:"clip_l_path" yaml:"clip_l_path"`
	ClipGPath               string `toml:"clip_g_path" yaml:"clip_g_path"`
	T5XXLPath               string `toml:"t5xxl_path" yaml:"t5xxl_path"`
	DiffusionModelPath      string `toml:"diffusion_model_path" yaml:"diffusion_model_path"`
	VAEPath                 string `toml:"vae_path" yaml:"vae_path"`
	TAESDPath               string `toml:"taesd_path" yaml:"taesd_path"`
	ControlNetPath          string `toml:"controlnet_path" yaml:"controlnet_path"`
	LoraModelDir            string `toml:"lora_model_dir" yaml:"lora_model_dir"`
	EmbeddingsPath          string `toml:"embeddings_path" yaml:"embeddings_path"`
	StackedIDEmbeddingsPath string `toml:"stacked_id_embeddings_path" yaml:"stacked_id_embeddings_path"`

	// Runtime placement.
	VAEDecodeOnly         bool     `toml:"vae_decode_only" yaml:"vae_decode_only"`
	VAETiling             bool     `toml:"vae_tiling" yaml:"vae_tiling"`
	FreeParamsImmediately bool     `toml:"free_params_immediately" yaml:"free_params_immediately"`
	Threads               int      `toml:"n_threads" yaml:"n_threads"`
	Schedule              Schedule `toml:"schedule" yaml:"schedule"`
	ClipOnCPU             bool     `toml:"clip_on_cpu" yaml:"clip_on_cpu"`
	ControlNetOnCPU       bool     `toml:"control_net_cpu" yaml:"control_net_cpu"`
	VAEOnCPU              bool     `toml:"vae_on_cpu" yaml:"vae_on_cpu"`
	DiffusionFlashAttn    bool     `toml:"diffusion_flash_attn" yaml:"diffusion_flash_attn"`

	// Sampling.
	Prompt            string       `toml:"prompt" yaml:"prompt"`
	NegativePrompt    string       `toml:"negative_prompt" yaml:"negative_prompt"`
	ClipSkip          int          `toml:"clip_skip" yaml:"clip_skip"`
	CFGScale          float64      `toml:"cfg_scale" yaml:"cfg_scale"`
	Guidance          float64      `toml:"guidance" yaml:"guidance"`
	Width             int          `toml:"-" yaml:"-"`
	Height            int          `toml:"-" yaml:"-"`
	SampleMethod      SampleMethod `toml:"sample_method" yaml:"sample_method"`
	SampleSteps       int          `toml:"sample_steps" yaml:"sample_steps"`
	Strength          float64      `toml:"strength" yaml:"strength"`
	Seed              int64        `toml:"seed" yaml:"seed"`
	ControlStrength   float64      `toml:"control_strength" yaml:"control_strength"`
	StyleRatio        float64      `toml:"style_ratio" yaml:"style_ratio"`
	NormalizeInput    bool         `toml:"normalize_input" yaml:"normalize_input"`
	InputIDImagesPath string       `toml:"input_id_images_path" yaml:"input_id_images_path"`

	// Skip layer guidance.
	SkipLayers     []int   `toml:"skip_layers" yaml:"skip_layers"`
	SLGScale       float64 `toml:"slg_scale" yaml:"slg_scale"`
	SkipLayerStart float64 `toml:"skip_layer_start" yaml:"skip_layer_start"`
	SkipLayerEnd   float64 `toml:"skip_layer_end" yaml:"skip_layer_end"`

	// Program and ExtraArgs configure the external process backend.
	// ExtraArgs is split with shell quoting rules.
	Program   string `toml:"program" yaml:"program"`
	ExtraArgs string `toml:"extra_args" yaml:"extra_args"`
}

// DefaultParams returns the parameters used when a setting leaves a key out.
func DefaultParams() Params {
	return Params{
		Mode:                  ModeTxt2Img,
		VAEDecodeOnly:         true,
		FreeParamsImmediately: true,
		Threads:               -1,
		Schedule:              ScheduleDefault,
		ClipSkip:              -1,
		CFGScale:              7.0,
		Guidance:              3.5,
		Width:                 1024,
		Height:                1024,
		SampleMethod:          SampleEulerA,
		SampleSteps:           20,
		Strength:              0.75,
		Seed:                  -1,
		ControlStrength:       0.9,
		StyleRatio:            20,
		SkipLayers:            []int{7, 8, 9},
		SkipLayerStart:        0.01,
		SkipLayerEnd:          0.2,
	}
}

// Validate reports the first missing required parameter.
func (p *Params) Validate() error {
	if strings.TrimSpace(p.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if strings.TrimSpace(p.ModelPath) == "" {
		return ErrEmptyModelPath
	}
	return nil
}

// Clone returns a copy of p that shares no slices with it.
func (p Params) Clone() Params {
	if p.SkipLayers != nil {
		p.SkipLayers = append([]int(nil), p.SkipLayers...)
	}
	return p
}

// Mode selects how the input image is used.
type Mode uint8

const (
	// ModeTxt2Img ignores the input image.
	ModeTxt2Img Mode = iota

	// ModeImg2Img uses the input image as the starting point.
	ModeImg2Img

	// ModeControl feeds the input image to a ControlNet.
	ModeControl
)

var modeNames = [...]string{
	ModeTxt2Img: "TXT2IMG",
	ModeImg2Img: "IMG2IMG",
	ModeControl: "CONTROL",
}

// String returns the settings spelling of m.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching ignores case.
func (m *Mode) UnmarshalText(text []byte) error {
	i, err := lookup(modeNames[:], string(text))
	if err != nil {
		return fmt.Errorf("mode %q: %w", text, err)
	}
	*m = Mode(i) //nolint:gosec // G115: i indexes modeNames
	return nil
}

// SampleMethod is the sampler used during denoising.
type SampleMethod uint8

// Samplers, in the order the generation library numbers them.
const (
	SampleEulerA SampleMethod = iota
	SampleEuler
	SampleHeun
	SampleDPM2
	SampleDPMPP2SA
	SampleDPMPP2M
	SampleDPMPP2Mv2
	SampleIPNDM
	SampleIPNDMV
	SampleLCM
)

var sampleNames = [...]string{
	SampleEulerA:    "euler_a",
	SampleEuler:     "euler",
	SampleHeun:      "heun",
	SampleDPM2:      "dpm2",
	SampleDPMPP2SA:  "dpm++2s_a",
	SampleDPMPP2M:   "dpm++2m",
	SampleDPMPP2Mv2: "dpm++2mv2",
	SampleIPNDM:     "ipndm",
	SampleIPNDMV:    "ipndm_v",
	SampleLCM:       "lcm",
}

// String returns the settings spelling of s.
func (s SampleMethod) String() string {
	if int(s) < len(sampleNames) {
		return sampleNames[s]
	}
	return fmt.Sprintf("SampleMethod(%d)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s SampleMethod) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SampleMethod) UnmarshalText(text []byte) error {
	i, err := lookup(sampleNames[:], string(text))
	if err != nil {
		return fmt.Errorf("sample method %q: %w", text, err)
	}
	*s = SampleMethod(i) //nolint:gosec // G115: i indexes sampleNames
	return nil
}

// Schedule is the noise schedule.
type Schedule uint8

// Noise schedules.
const (
	ScheduleDefault Schedule = iota
	ScheduleDiscrete
	ScheduleKarras
	ScheduleExponential
	ScheduleAYS
	ScheduleGITS
)

var scheduleNames = [...]string{
	ScheduleDefault:     "default",
	ScheduleDiscrete:    "discrete",
	ScheduleKarras:      "karras",
	ScheduleExponential: "exponential",
	ScheduleAYS:         "ays",
	ScheduleGITS:        "gits",
}

// String returns the settings spelling of s.
func (s Schedule) String() string {
	if int(s) < len(scheduleNames) {
		return scheduleNames[s]
	}
	return fmt.Sprintf("Schedule(%d)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Schedule) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Schedule) UnmarshalText(text []byte) error {
	i, err := lookup(scheduleNames[:], string(text))
	if err != nil {
		return fmt.Errorf("schedule %q: %w", text, err)
	}
	*s = Schedule(i) //nolint:gosec // G115: i indexes scheduleNames
	return nil
}

func lookup(names []string, s string) (int, error) {
	s = strings.TrimSpace(s)
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return i, nil
		}
	}
	return 0, ErrUnknownValue
}
