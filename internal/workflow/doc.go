// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package workflow drives a single approval style submission through
// validation, confirmation and an at-most-once submit.
package workflow
