// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package aws loads AWS SDK v2 config and uploads rendered command output to
// S3 for --export.
package aws
