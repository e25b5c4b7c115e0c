// Package cli holds the interactive prompts of the secflow command.
package cli

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/amp-labs/secflow/cik"
	"github.com/manifoldco/promptui"
)

// Terminal is where prompts read and write. The zero value uses the process'
// standard streams.
type Terminal struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

func (t Terminal) stdin() io.ReadCloser {
	if t.Stdin != nil {
		return t.Stdin
	}

	return os.Stdin
}

func (t Terminal) stdout() io.WriteCloser {
	if t.Stdout != nil {
		return t.Stdout
	}

	return os.Stdout
}

// PromptConfirm asks a yes/no question. Declining is not an error.
func (t Terminal) PromptConfirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     t.stdin(),
		Stdout:    t.stdout(),
	}

	_, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// ValidateCIK accepts an empty answer, which ends a CIK prompt, or a valid CIK.
func ValidateCIK(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	_, err := cik.New(s)

	return err
}

// PromptCIKs reads CIKs until an empty answer and returns them as typed.
func (t Terminal) PromptCIKs(label string) ([]string, error) {
	var ciks []string

	for {
		prompt := promptui.Prompt{
			Label:    label,
			Validate: ValidateCIK,
			Stdin:    t.stdin(),
			Stdout:   t.stdout(),
		}

		answer, err := prompt.Run()
		if err != nil {
			return nil, err
		}

		answer = strings.TrimSpace(answer)
		if answer == "" {
			return ciks, nil
		}

		ciks = append(ciks, answer)
	}
}

// Select asks for one of choices.
func (t Terminal) Select(label string, choices []string) (string, error) {
	sel := &promptui.Select{
		Label: label,
		Items: choices,
		Searcher: func(input string, index int) bool {
			return input != "" && strings.HasPrefix(choices[index], input)
		},
		Stdin:  t.stdin(),
		Stdout: t.stdout(),
	}

	_, value, err := sel.Run()

	return value, err
}
