// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"

	"github.com/gogpu/sdfilter/internal/image"
)

// DefaultProgram is the executable the exec backend runs when neither the
// options nor the parameters name one.
const DefaultProgram = "sd"

// ErrProgramNotFound is returned when the generation program cannot be located.
var ErrProgramNotFound = errors.New("backend: generation program not found")

// ProcessError reports a generation program that exited with an error.
type ProcessError struct {
	Program string
	Err     error
	Tail    []string // last output lines
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("backend: %s: %v", filepath.Base(e.Program), e.Err)
	if len(e.Tail) > 0 {
		msg += ": " + strings.Join(e.Tail, " | ")
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Options configure backends created through the registry.
type Options struct {
	// BasePath is the directory relative model paths and the program are
	// resolved against. Empty means the working directory.
	BasePath string

	// Program overrides DefaultProgram.
	Program string

	// Logger receives backend output. Nil discards it.
	Logger *slog.Logger
}

// Exec generates images by running a stable-diffusion.cpp compatible
// command line program once per generation.
//
// Exec is safe for concurrent use; each Generate call runs its own process
// in its own temporary directory.
type Exec struct {
	opts Options
	log  *slog.Logger

	mu      sync.Mutex
	program string // resolved by Init
}

// NewExec creates an exec backend.
func NewExec(opts Options) *Exec {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Exec{opts: opts, log: log}
}

// Name implements Generator.
func (e *Exec) Name() string { return "exec" }

// Init resolves the program path. It is safe to call repeatedly.
func (e *Exec) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.program != "" {
		return nil
	}
	name := e.opts.Program
	if name == "" {
		name = DefaultProgram
	}
	path, err := e.lookPath(name)
	if err != nil {
		return err
	}
	e.program = path
	return nil
}

// Close implements Generator.
func (e *Exec) Close() error {
	e.mu.Lock()
	e.program = ""
	e.mu.Unlock()
	return nil
}

// lookPath finds name in BasePath first, then in PATH.
func (e *Exec) lookPath(name string) (string, error) {
	name = e.resolve(name)
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%w: %s", ErrProgramNotFound, name)
		}
		return name, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrProgramNotFound, name)
	}
	return path, nil
}

// resolve expands a leading ~ and makes relative paths relative to BasePath.
// Bare names without a separator are left alone when BasePath has no such file.
func (e *Exec) resolve(path string) string {
	if path == "" {
		return ""
	}
	expanded, err := homedir.Expand(path)
	if err == nil {
		path = expanded
	}
	if filepath.IsAbs(path) || e.opts.BasePath == "" {
		return path
	}
	candidate := filepath.Join(e.opts.BasePath, path)
	if strings.ContainsRune(path, filepath.Separator) || strings.ContainsRune(path, '/') {
		return candidate
	}
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

// Generate implements Generator.
func (e *Exec) Generate(ctx context.Context, p Params, input *Image, progress ProgressFunc) (*Image, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if input != nil && !input.Valid() {
		return nil, ErrInvalidImage
	}

	program, err := e.programFor(p)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "sdfilter-*")
	if err != nil {
		return nil, fmt.Errorf("backend: temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	inputPath := ""
	if input != nil {
		buf, err := input.buf()
		if err != nil {
			return nil, err
		}
		inputPath = filepath.Join(dir, "input.png")
		if err := buf.SavePNG(inputPath); err != nil {
			return nil, err
		}
	}
	outputPath := filepath.Join(dir, "output.png")

	args, err := e.Args(p, inputPath, outputPath)
	if err != nil {
		return nil, err
	}

	e.log.Debug("backend: exec", "program", program, "args", len(args))
	level := slog.LevelDebug
	if p.Verbose {
		level = slog.LevelInfo
	}
	if err := e.run(ctx, program, args, progress, level); err != nil {
		return nil, err
	}

	out, err := image.LoadImage(outputPath, image.FormatRGB8)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoOutput
		}
		return nil, err
	}

	// Generated images come back rounded up to the model grid. Anything
	// smaller than requested is stretched to cover the request.
	if p.Width > 0 && p.Height > 0 && (out.Width() < p.Width || out.Height() < p.Height) {
		e.log.Warn("backend: output smaller than requested, scaling",
			"got_w", out.Width(), "got_h", out.Height(), "want_w", p.Width, "want_h", p.Height)
		out, err = out.Scale(max(out.Width(), p.Width), max(out.Height(), p.Height))
		if err != nil {
			return nil, err
		}
	}
	return fromBuf(out), nil
}

func (e *Exec) programFor(p Params) (string, error) {
	if p.Program != "" {
		return e.lookPath(p.Program)
	}
	if err := e.Init(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.program, nil
}

// Args builds the command line for one generation. inputPath is empty for
// text-to-image.
func (e *Exec) Args(p Params, inputPath, outputPath string) ([]string, error) {
	threads := p.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	seed := p.Seed
	if seed < 0 {
		seed = rand.Int64N(1 << 31) //nolint:gosec // G404: seeds need no crypto strength
	}
	width, height := p.Width, p.Height
	if width <= 0 || height <= 0 {
		d := DefaultParams()
		width, height = d.Width, d.Height
	}

	mode := "txt2img"
	var initImage, control string
	switch {
	case inputPath == "":
	case p.Mode == ModeImg2Img:
		mode, initImage = "img2img", inputPath
	case p.Mode == ModeControl && p.ControlNetPath != "":
		control = inputPath
	}

	args := []string{
		"-M", mode,
		"-t", strconv.Itoa(threads),
		"-m", e.resolve(p.ModelPath),
		"-p", p.Prompt,
		"-o", outputPath,
		"-W", strconv.Itoa(roundUp64(width)),
		"-H", strconv.Itoa(roundUp64(height)),
		"--sampling-method", p.SampleMethod.String(),
		"--steps", strconv.Itoa(p.SampleSteps),
		"--cfg-scale", formatFloat(p.CFGScale),
		"--guidance", formatFloat(p.Guidance),
		"--style-ratio", formatFloat(p.StyleRatio),
		"--clip-skip", strconv.Itoa(p.ClipSkip),
		"-s", strconv.FormatInt(seed, 10),
	}

	paths := []struct{ flag, path string }{
		{"--clip_l", p.ClipLPath},
		{"--clip_g", p.ClipGPath},
		{"--t5xxl", p.T5XXLPath},
		{"--diffusion-model", p.DiffusionModelPath},
		{"--vae", p.VAEPath},
		{"--taesd", p.TAESDPath},
		{"--control-net", p.ControlNetPath},
		{"--lora-model-dir", p.LoraModelDir},
		{"--embd-dir", p.EmbeddingsPath},
		{"--stacked-id-embd-dir", p.StackedIDEmbeddingsPath},
		{"--input-id-images-dir", p.InputIDImagesPath},
	}
	for _, kv := range paths {
		if kv.path != "" {
			args = append(args, kv.flag, e.resolve(kv.path))
		}
	}

	if p.NegativePrompt != "" {
		args = append(args, "-n", p.NegativePrompt)
	}
	if initImage != "" {
		args = append(args, "-i", initImage, "--strength", formatFloat(p.Strength))
	}
	if control != "" {
		args = append(args, "--control-image", control, "--control-strength", formatFloat(p.ControlStrength))
	}
	if p.Schedule != ScheduleDefault {
		args = append(args, "--schedule", p.Schedule.String())
	}
	if p.SLGScale > 0 {
		args = append(args,
			"--slg-scale", formatFloat(p.SLGScale),
			"--skip-layers", formatLayers(p.SkipLayers),
			"--skip-layer-start", formatFloat(p.SkipLayerStart),
			"--skip-layer-end", formatFloat(p.SkipLayerEnd),
		)
	}

	flags := []struct {
		flag string
		on   bool
	}{
		{"--vae-tiling", p.VAETiling},
		{"--clip-on-cpu", p.ClipOnCPU},
		{"--control-net-cpu", p.ControlNetOnCPU},
		{"--vae-on-cpu", p.VAEOnCPU},
		{"--diffusion-fa", p.DiffusionFlashAttn},
		{"--normalize-input", p.NormalizeInput},
		{"-v", p.Verbose},
	}
	for _, f := range flags {
		if f.on {
			args = append(args, f.flag)
		}
	}

	if strings.TrimSpace(p.ExtraArgs) != "" {
		extra, err := shellwords.Parse(p.ExtraArgs)
		if err != nil {
			return nil, fmt.Errorf("backend: extra_args: %w", err)
		}
		args = append(args, extra...)
	}
	return args, nil
}

// tailLines is the number of output lines kept for error reports.
const tailLines = 8

func (e *Exec) run(ctx context.Context, program string, args []string, progress ProgressFunc, level slog.Level) error {
	cmd := exec.CommandContext(ctx, program, args...)
	if e.opts.BasePath != "" {
		cmd.Dir = e.opts.BasePath
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("backend: stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return &ProcessError{Program: program, Err: err}
	}

	tail := scanOutput(ctx, stdout, progress, e.log, level)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ProcessError{Program: program, Err: err, Tail: tail}
	}
	return nil
}

// progressPattern matches the sampler progress bar, e.g. "|=====>   | 3/20 - 1.2s/it".
var progressPattern = regexp.MustCompile(`\|\s*(\d+)/(\d+)\b`)

// parseProgress extracts step and total from a progress line.
func parseProgress(line string) (step, steps int, ok bool) {
	m := progressPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, false
	}
	step, err1 := strconv.Atoi(m[1])
	steps, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || steps <= 0 || step > steps {
		return 0, 0, false
	}
	return step, steps, true
}

// scanOutput forwards progress and logs the remaining lines at level. It
// returns the last lines of output.
func scanOutput(ctx context.Context, r io.Reader, progress ProgressFunc, log *slog.Logger, level slog.Level) []string {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	sc.Split(scanLinesCR)

	var tail []string
	last := -1
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if step, steps, ok := parseProgress(line); ok {
			if progress != nil && step != last {
				progress(step, steps)
			}
			last = step
			continue
		}
		log.Log(ctx, level, "backend: output", "line", line)
		tail = append(tail, line)
		if len(tail) > tailLines {
			tail = tail[1:]
		}
	}
	// Drain so the process never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
	return tail
}

// scanLinesCR splits on '\n' or '\r'; progress bars redraw with '\r'.
func scanLinesCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatLayers(layers []int) string {
	parts := make([]string, len(layers))
	for i, l := range layers {
		parts[i] = strconv.Itoa(l)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
