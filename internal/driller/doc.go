// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package driller walks server JSON rows with dotted paths so commands can
// pull nested values such as requester.name or items[0].qty.
package driller
