// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/staranto/procurectl/internal/filters"
)

// Lines reads one query per line from r and writes the results of each
// debounced search to w. A pending query is run immediately at EOF.
func Lines(ctx context.Context, r io.Reader, w io.Writer, delay time.Duration, run Runner) error {
	var mu sync.Mutex
	var firstErr error

	deb := filters.NewDebouncer(delay, func(q string) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		out, err := run(ParseQuery(q).Filter())
		if err != nil {
			log.WithError(err).WithField("query", q).Warn("search failed")
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		fmt.Fprint(w, out)
	})

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			deb.Stop()
			return ctx.Err()
		}
		q := strings.TrimSpace(sc.Text())
		if q == "" {
			continue
		}
		deb.Trigger(q)
	}
	if err := sc.Err(); err != nil {
		deb.Stop()
		return fmt.Errorf("failed to read queries: %w", err)
	}
	deb.Flush()

	// Wait out a search the timer may have started.
	mu.Lock()
	defer mu.Unlock()
	return firstErr
}
