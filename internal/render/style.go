// Package render prints styled text and tables for the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

var (
	strongColors    = text.Colors{text.Bold}
	attentionColors = text.Colors{text.FgYellow}
	successColors   = text.Colors{text.FgGreen}
	diffColors      = []text.Colors{{text.FgRed}, {text.FgCyan}, {text.FgGreen}}
)

// DisableColors turns off all styling, e.g. when NO_COLOR is set.
func DisableColors() {
	text.DisableColors()
}

func Strong(s string) string    { return strongColors.Sprint(s) }
func Attention(s string) string { return attentionColors.Sprint(s) }
func Success(s string) string   { return successColors.Sprint(s) }

// ColorizeDiff highlights to from the first version part that differs from
// from: red for major, cyan for minor and green for patch changes. Range
// operators are left untouched.
func ColorizeDiff(from, to string) string {
	toPrefix, toVersion := splitOperator(to)
	_, fromVersion := splitOperator(from)

	toParts := strings.Split(toVersion, ".")
	fromParts := strings.Split(fromVersion, ".")

	i := 0
	for i < len(toParts) && i < len(fromParts) && toParts[i] == fromParts[i] {
		i++
	}
	if i == len(toParts) {
		return to
	}

	colors := diffColors[min(i, len(diffColors)-1)]
	head := strings.Join(toParts[:i], ".")
	if head != "" {
		head += "."
	}
	return toPrefix + head + colors.Sprint(strings.Join(toParts[i:], "."))
}

func splitOperator(spec string) (string, string) {
	i := strings.IndexFunc(spec, func(r rune) bool {
		return (r >= '0' && r <= '9') || r == 'x' || r == 'X' || r == '*'
	})
	if i == -1 {
		return spec, ""
	}
	return spec[:i], spec[i:]
}

// Terminal writes human readable output.
type Terminal struct {
	out io.Writer
}

// NewTerminal returns a terminal writing to out, or stdout when out is nil.
func NewTerminal(out io.Writer) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	return &Terminal{out: out}
}

// Writer returns the underlying output.
func (t *Terminal) Writer() io.Writer { return t.out }

func (t *Terminal) Printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

func (t *Terminal) Println(args ...any) {
	fmt.Fprintln(t.out, args...)
}

func (t *Terminal) Strong(s string) string              { return Strong(s) }
func (t *Terminal) Attention(s string) string           { return Attention(s) }
func (t *Terminal) Success(s string) string             { return Success(s) }
func (t *Terminal) ColorizeDiff(from, to string) string { return ColorizeDiff(from, to) }
