// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package api wraps the procurement REST resources. Reads go through the
// injected cache under deterministic keys; writes bypass it and invalidate the
// keys of the entity they touch.
package api
