// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package workflow

// State is a step of a submission.
type State int

const (
	Idle State = iota
	ValidatingForm
	AwaitingConfirmation
	Submitting
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ValidatingForm:
		return "validating"
	case AwaitingConfirmation:
		return "awaiting-confirmation"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a submission.
func (s State) Terminal() bool {
	return s == Success || s == Failed
}
