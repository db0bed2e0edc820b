// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// PROCURECTL_LOG env variable. Logs go to stderr so they never mix with
// command output.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("PROCURECTL_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(NewCustomHandler(os.Stderr))
	log.SetLevelFromString(strings.ToLower(level))
}

// CustomHandler formats log messages and writes them to w.
type CustomHandler struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewCustomHandler returns a handler writing to w.
func NewCustomHandler(w io.Writer) *CustomHandler {
	return &CustomHandler{w: w, now: time.Now}
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := h.now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", timestamp, level, e.Message)

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields[name])
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, b.String())
	return err
}
