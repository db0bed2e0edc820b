// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/apex/log"

	"github.com/staranto/procurectl/internal/transport"
)

var (
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrCancelled          = errors.New("submission cancelled")
)

// SubmitError is a server rejection of a submission. Message is the
// server's own text.
type SubmitError struct {
	Action  string
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Action + " failed: " + e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Submit performs the mutation. Cache invalidation on success belongs to the
// submit func, which knows the affected entity.
type Submit func(ctx context.Context) ([]byte, error)

// Result is the outcome of Run.
type Result struct {
	State State
	Body  []byte
}

// Workflow runs submissions of one action.
type Workflow struct {
	name      string
	confirmer Confirmer

	mu           sync.Mutex
	state        State
	inFlight     bool
	onTransition func(from, to State)
}

type Option func(*Workflow)

// WithTransitionHook observes every state change.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(w *Workflow) {
		w.onTransition = fn
	}
}

// New returns an idle workflow that asks c before submitting.
func New(name string, c Confirmer, opts ...Option) *Workflow {
	w := &Workflow{name: name, confirmer: c}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State is the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) moveTo(s State) {
	w.mu.Lock()
	from := w.state
	w.state = s
	hook := w.onTransition
	w.mu.Unlock()

	log.WithFields(log.Fields{"action": w.name, "from": from.String(), "to": s.String()}).Debug("workflow")
	if hook != nil {
		hook(from, s)
	}
}

// Run validates form, asks for confirmation with prompt and calls submit at
// most once. Validation failures and cancellation return to Idle with no
// side effects. A rejected submission passes through Failed back to Idle
// and is returned as a *SubmitError.
func (w *Workflow) Run(ctx context.Context, form Form, prompt string, submit Submit) (Result, error) {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return Result{State: w.State()}, ErrSubmissionInFlight
	}
	w.inFlight = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.inFlight = false
		w.mu.Unlock()
	}()

	w.moveTo(ValidatingForm)
	if err := form.Validate(); err != nil {
		w.moveTo(Idle)
		return Result{State: Idle}, err
	}

	w.moveTo(AwaitingConfirmation)
	ok, err := w.confirmer.Confirm(ctx, prompt)
	if err != nil {
		w.moveTo(Idle)
		return Result{State: Idle}, err
	}
	if !ok {
		w.moveTo(Idle)
		return Result{State: Idle}, ErrCancelled
	}

	w.moveTo(Submitting)
	body, err := submit(ctx)
	if err != nil {
		w.moveTo(Failed)
		w.moveTo(Idle)
		return Result{State: Failed}, &SubmitError{Action: w.name, Message: transport.Message(err), Err: err}
	}

	w.moveTo(Success)
	return Result{State: Success, Body: body}, nil
}
