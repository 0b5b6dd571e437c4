// Package prompt provides small interactive input helpers for the CLI.
package prompt

import (
	"fmt"
	"strings"

	"github.com/peterh/liner"
)

// Prompter abstracts line input so command flows can be tested without a
// terminal.
type Prompter interface {
	Input(prompt string) (string, error)
	Close() error
}

// LinerPrompter is the production Prompter backed by peterh/liner.
type LinerPrompter struct {
	state *liner.State
}

// NewLinerPrompter creates a terminal-backed prompter.
func NewLinerPrompter() *LinerPrompter {
	s := liner.NewLiner()
	s.SetCtrlCAborts(true)
	return &LinerPrompter{state: s}
}

// Input reads one line with the given prompt.
func (p *LinerPrompter) Input(prompt string) (string, error) {
	line, err := p.state.Prompt(prompt)
	if err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}
	return line, nil
}

// Close restores the terminal state.
func (p *LinerPrompter) Close() error {
	return p.state.Close() //nolint:wrapcheck // simple terminal cleanup
}

// Confirm asks a yes/no question; empty input means no.
func Confirm(p Prompter, question string) (bool, error) {
	answer, err := p.Input(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
