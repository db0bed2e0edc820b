// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package search runs a listing repeatedly as a query is typed. Input is
// debounced so a burst of keystrokes costs one round trip.
package search
