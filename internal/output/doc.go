// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output filters, sorts and renders result rows as text tables, JSON,
// YAML or the raw server payload.
package output
