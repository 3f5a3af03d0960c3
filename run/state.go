// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package run

import "fmt"

// State is a phase announced to the host. Values are part of the host
// protocol.
type State int

// Run states.
const (
	StateStart    State = 0x0101
	StateContinue State = 0x0102
	StateEnd      State = 0x0103
	StateAbort    State = 0x0104
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "Start"
	case StateContinue:
		return "Continue"
	case StateEnd:
		return "End"
	case StateAbort:
		return "Abort"
	}
	return fmt.Sprintf("State(%#x)", int(s))
}

// Result is the host's reply to a State. Values are part of the host
// protocol.
type Result int

// Host replies.
const (
	ResultContinue Result = 0x0101
	ResultRestart  Result = 0x0102
	ResultExit     Result = 0x0103
)

func (r Result) String() string {
	switch r {
	case ResultContinue:
		return "Continue"
	case ResultRestart:
		return "Restart"
	case ResultExit:
		return "Exit"
	}
	return fmt.Sprintf("Result(%#x)", int(r))
}

// action is what the controller does after a host reply.
type action uint8

const (
	actionProceed action = iota
	actionRestart
	actionExit
)

func (a action) String() string {
	switch a {
	case actionProceed:
		return "proceed"
	case actionRestart:
		return "restart"
	}
	return "exit"
}

// next interprets the host reply r to state s. It is the only place host
// replies are interpreted.
//
//	Start:    Exit ends the run; anything else proceeds.
//	Continue: Continue proceeds, Restart restarts; anything else ends the run.
//	End:      Restart starts a new cycle; anything else ends the run.
//	Abort:    the run ends.
func next(s State, r Result) action {
	switch s {
	case StateStart:
		if r == ResultExit {
			return actionExit
		}
		return actionProceed
	case StateContinue:
		switch r {
		case ResultContinue:
			return actionProceed
		case ResultRestart:
			return actionRestart
		}
		return actionExit
	case StateEnd:
		if r == ResultRestart {
			return actionRestart
		}
		return actionExit
	}
	return actionExit
}
