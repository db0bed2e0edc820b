// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"github.com/staranto/procurectl/internal/config"
	"github.com/staranto/procurectl/internal/output"
)

// BadgeClass groups statuses that are shown the same way.
type BadgeClass string

const (
	BadgeSuccess BadgeClass = "success"
	BadgeWarning BadgeClass = "warning"
	BadgeDanger  BadgeClass = "danger"
	BadgeInfo    BadgeClass = "info"
	BadgeNeutral BadgeClass = "neutral"
)

var statusBadges = map[string]BadgeClass{
	"APPROVED":    BadgeSuccess,
	"CONFIRMED":   BadgeSuccess,
	"RECEIVED":    BadgeSuccess,
	"RELEASED":    BadgeSuccess,
	"COMPLETED":   BadgeSuccess,
	"PENDING":     BadgeWarning,
	"SUBMITTED":   BadgeWarning,
	"WAITING":     BadgeWarning,
	"IN_PROGRESS": BadgeWarning,
	"PARTIAL":     BadgeWarning,
	"REVISE":      BadgeWarning,
	"REJECTED":    BadgeDanger,
	"CANCELLED":   BadgeDanger,
	"VOID":        BadgeDanger,
	"DRAFT":       BadgeInfo,
	"OPEN":        BadgeInfo,
	"NEW":         BadgeInfo,
}

var badgeColors = map[BadgeClass]string{
	BadgeSuccess: "#3fb950",
	BadgeWarning: "#d29922",
	BadgeDanger:  "#f85149",
	BadgeInfo:    "#58a6ff",
	BadgeNeutral: "#8b949e",
}

// StatusBadge classifies a status. Matching ignores case, spaces and dashes.
func StatusBadge(status string) BadgeClass {
	key := strings.ToUpper(strings.TrimSpace(status))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if c, ok := statusBadges[key]; ok {
		return c
	}
	return BadgeNeutral
}

// BadgeStyle is the terminal style of class. colors.<class> in config
// overrides the default color.
func BadgeStyle(class BadgeClass) lipgloss.Style {
	color, _ := config.GetString("colors."+string(class), badgeColors[class])
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(class == BadgeDanger)
}

// StatusStyler colors the cells of the status column.
func StatusStyler(statusKey string) output.Styler {
	return func(key string, value string) (lipgloss.Style, bool) {
		if key != statusKey || value == "" || value == "-" {
			return lipgloss.Style{}, false
		}
		return BadgeStyle(StatusBadge(value)), true
	}
}
