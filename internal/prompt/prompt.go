// Package prompt asks the developer questions on the terminal.
package prompt

import (
	"context"
	"errors"
)

// ErrAborted is returned when the developer cancels a prompt with Ctrl+C.
var ErrAborted = errors.New("prompt aborted")

// Choice is one entry of a selection list.
type Choice struct {
	Label string
	Value string
}

// Prompter is the boundary between decision logic and the terminal.
type Prompter interface {
	// Select shows choices with the cursor on defaultIndex and returns the
	// value of the picked choice.
	Select(ctx context.Context, message string, choices []Choice, defaultIndex int) (string, error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, message string, def bool) (bool, error)
	// Input reads a line of text. An empty answer yields def.
	Input(ctx context.Context, message, def string) (string, error)
	// MultiSelect lets the developer tick any number of options.
	MultiSelect(ctx context.Context, message string, options []string, defaults []string) ([]string, error)
}

// Strings turns plain values into choices labelled by themselves.
func Strings(values []string) []Choice {
	choices := make([]Choice, len(values))
	for i, v := range values {
		choices[i] = Choice{Label: v, Value: v}
	}
	return choices
}

// IndexOf returns the index of the choice holding value, or -1.
func IndexOf(choices []Choice, value string) int {
	for i, c := range choices {
		if c.Value == value {
			return i
		}
	}
	return -1
}
