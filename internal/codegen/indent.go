package codegen

import "strings"

// indenter writes one line at a fixed indentation level of four spaces per
// level.
type indenter int

func (i indenter) line(text string) string {
	if text == "" {
		return "\n"
	}
	return strings.Repeat("    ", int(i)) + text + "\n"
}
