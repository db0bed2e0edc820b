// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package table binds a server paginated listing to the rows a command
// prints: default columns, derived labels from reference data, status badges
// and batched employee name resolution.
package table
