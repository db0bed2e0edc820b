// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

// Action is the verdict carried by a Decision.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionRevise  Action = "REVISE"
)

// Decision is the body of the approve, cancel-period, confirm and release
// submissions.
type Decision struct {
	Action  Action `json:"decision"`
	Remarks string `json:"remarks,omitempty"`
	// PIC is the employee acting on the step, when the server needs it.
	PIC string `json:"pic,omitempty"`
}
