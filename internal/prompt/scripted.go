package prompt

import (
	"context"
	"fmt"
	"strconv"
)

// Asked records a question put to a Scripted prompter.
type Asked struct {
	Kind         string
	Message      string
	Choices      []Choice
	DefaultIndex int
	Default      string
}

// Scripted answers prompts from a fixed list, in order. It is meant for
// tests and non-interactive runs.
type Scripted struct {
	Answers []string
	Asked   []Asked
}

// NewScripted returns a prompter replaying answers.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{Answers: answers}
}

func (s *Scripted) next(asked Asked) (string, error) {
	s.Asked = append(s.Asked, asked)
	if len(s.Answers) == 0 {
		return "", fmt.Errorf("no scripted answer left for %s %q", asked.Kind, asked.Message)
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}

func (s *Scripted) Select(_ context.Context, message string, choices []Choice, defaultIndex int) (string, error) {
	answer, err := s.next(Asked{Kind: "select", Message: message, Choices: choices, DefaultIndex: defaultIndex})
	if err != nil {
		return "", err
	}
	if answer == "" && defaultIndex >= 0 && defaultIndex < len(choices) {
		return choices[defaultIndex].Value, nil
	}
	if IndexOf(choices, answer) == -1 {
		return "", fmt.Errorf("scripted answer %q is not a choice of %q", answer, message)
	}
	return answer, nil
}

func (s *Scripted) Confirm(_ context.Context, message string, def bool) (bool, error) {
	answer, err := s.next(Asked{Kind: "confirm", Message: message, Default: strconv.FormatBool(def)})
	if err != nil {
		return false, err
	}
	if answer == "" {
		return def, nil
	}
	return strconv.ParseBool(answer)
}

func (s *Scripted) Input(_ context.Context, message, def string) (string, error) {
	answer, err := s.next(Asked{Kind: "input", Message: message, Default: def})
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// MultiSelect consumes one answer per ticked option, terminated by an
// empty answer.
func (s *Scripted) MultiSelect(_ context.Context, message string, options []string, defaults []string) ([]string, error) {
	s.Asked = append(s.Asked, Asked{Kind: "multiselect", Message: message, Choices: Strings(options)})
	var picked []string
	for len(s.Answers) > 0 {
		answer := s.Answers[0]
		s.Answers = s.Answers[1:]
		if answer == "" {
			return picked, nil
		}
		picked = append(picked, answer)
	}
	if picked == nil {
		return defaults, nil
	}
	return picked, nil
}
