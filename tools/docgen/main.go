// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// docgen renders docs/commands/*.md into man pages and tldr pages. The tldr
// pages are what `procurectl <cmd> --tldr` shows.
//
//	docs/man/share/man1/procurectl-<cmd>.1  full markdown through md2man
//	docs/tldr/procurectl-<cmd>.md           summary plus the quick examples
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
)

const (
	binary  = "procurectl"
	homeURL = "https://github.com/staranto/procurectl"
)

func main() {
	root := flag.String("root", ".", "repo root")
	onlyIfChanged := flag.Bool("only-if-changed", true, "only write files if content changed")
	flag.Parse()

	n, err := generate(*root, *onlyIfChanged)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("%d command docs rendered\n", n)
}

// generate renders every command doc under root and returns how many were
// processed.
func generate(root string, onlyIfChanged bool) (int, error) {
	commandsDir := filepath.Join(root, "docs", "commands")
	manDir := filepath.Join(root, "docs", "man", "share", "man1")
	tldrDir := filepath.Join(root, "docs", "tldr")

	for _, d := range []string{manDir, tldrDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return 0, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	entries, err := os.ReadDir(commandsDir)
	if err != nil {
		return 0, fmt.Errorf("reading commands dir %s: %w", commandsDir, err)
	}

	var processed int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		cmd := strings.TrimSuffix(e.Name(), ".md")
		raw, err := os.ReadFile(filepath.Join(commandsDir, e.Name()))
		if err != nil {
			return processed, err
		}

		manPath := filepath.Join(manDir, fmt.Sprintf("%s-%s.1", binary, cmd))
		if err := writeFileIfChanged(manPath, md2man.Render(raw), onlyIfChanged); err != nil {
			return processed, fmt.Errorf("writing man page for %s: %w", cmd, err)
		}

		doc := parseDoc(string(raw))
		tldrPath := filepath.Join(tldrDir, fmt.Sprintf("%s-%s.md", binary, cmd))
		if err := writeFileIfChanged(tldrPath, []byte(doc.tldr(cmd)), onlyIfChanged); err != nil {
			return processed, fmt.Errorf("writing tldr for %s: %w", cmd, err)
		}

		processed++
	}

	if processed == 0 {
		return 0, fmt.Errorf("no command markdown found under %s", commandsDir)
	}
	return processed, nil
}

func writeFileIfChanged(path string, content []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(content)) {
			return nil
		}
	}
	return os.WriteFile(path, content, 0o644) //nolint:gosec
}

type example struct {
	Desc string
	Cmd  string
}

// commandDoc is what a tldr page needs from a command doc.
type commandDoc struct {
	Title    string
	Short    string
	Examples []example
}

var (
	h1Re      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	sectionRe = regexp.MustCompile(`(?m)^#{2,}\s+(.+)$`)
)

// parseDoc reads the title from the first H1, the first paragraph of the
// "Short description" section and the first code block of "Quick examples".
func parseDoc(md string) commandDoc {
	var d commandDoc
	if m := h1Re.FindStringSubmatch(md); m != nil {
		d.Title = strings.TrimSpace(m[1])
	}

	if body, ok := section(md, "short description"); ok {
		for _, para := range strings.Split(strings.TrimSpace(body), "\n\n") {
			if p := strings.Join(strings.Fields(para), " "); p != "" {
				d.Short = p
				break
			}
		}
	}
	if d.Short == "" && d.Title != "" {
		d.Short = d.Title + "."
	}

	if body, ok := section(md, "quick examples"); ok {
		d.Examples = parseExamples(firstFence(body))
	}
	return d
}

// section returns the text under the heading named title, up to the next
// heading.
func section(md, title string) (string, bool) {
	locs := sectionRe.FindAllStringSubmatchIndex(md, -1)
	for i, loc := range locs {
		if !strings.EqualFold(strings.TrimSpace(md[loc[2]:loc[3]]), title) {
			continue
		}
		end := len(md)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		return md[loc[1]:end], true
	}
	return "", false
}

func firstFence(s string) string {
	const fence = "```"
	start := strings.Index(s, fence)
	if start < 0 {
		return ""
	}
	rest := s[start+len(fence):]
	// Skip a language tag on the opening fence.
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		rest = rest[nl+1:]
	}
	if end := strings.Index(rest, fence); end >= 0 {
		return rest[:end]
	}
	return ""
}

// parseExamples pairs each "# description" comment with the command line
// that follows it.
func parseExamples(code string) []example {
	var (
		exs  []example
		desc string
	)
	for _, ln := range strings.Split(code, "\n") {
		s := strings.TrimSpace(ln)
		switch {
		case s == "":
		case strings.HasPrefix(s, "#"):
			desc = strings.TrimSpace(strings.TrimPrefix(s, "#"))
		default:
			if desc == "" {
				desc = "Example"
			}
			exs = append(exs, example{Desc: desc, Cmd: strings.Join(strings.Fields(s), " ")})
			desc = ""
		}
	}
	return exs
}

func (d commandDoc) tldr(cmd string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s-%s\n\n", binary, cmd)
	fmt.Fprintf(&b, "> %s\n", d.Short)
	fmt.Fprintf(&b, "> More information: %s.\n\n", homeURL)

	exs := d.Examples
	if len(exs) == 0 {
		exs = []example{{Desc: "Show help for the command", Cmd: binary + " " + cmd + " --help"}}
	}
	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s:\n\n`%s`\n", ex.Desc, ex.Cmd)
	}
	return b.String()
}
