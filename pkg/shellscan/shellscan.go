// Package shellscan inspects shell one-liners that agents ask to run.
// It parses commands with mvdan.cc/sh/v3/syntax (the shfmt parser) so
// approval prompts show a normalized rendering and keyword diagnostics
// can point at the literal word that matched.
package shellscan

import (
	"bytes"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Normalize reprints a shell command in canonical form: consistent
// quoting and spacing, comments stripped. On parse error the input is
// returned unchanged so a malformed command is still shown to the
// approver as-is.
func Normalize(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	prog, err := parser.Parse(strings.NewReader(input), "")
	if err != nil {
		return input
	}

	printer := syntax.NewPrinter(syntax.SpaceRedirects(true))
	var buf bytes.Buffer
	if err := printer.Print(&buf, prog); err != nil {
		return input
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Words returns the literal words of a command in order: command names,
// arguments, and literal parts of concatenations. Expansions and
// substitutions contribute their nested literals. On parse error it
// falls back to whitespace splitting.
func Words(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	prog, err := parser.Parse(strings.NewReader(input), "")
	if err != nil {
		return strings.Fields(input)
	}

	var words []string
	syntax.Walk(prog, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.Lit:
			if n.Value != "" {
				words = append(words, n.Value)
			}
		case *syntax.SglQuoted:
			if n.Value != "" {
				words = append(words, n.Value)
			}
		}
		return true
	})
	return words
}
