package ui

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	affirmativeShortResponseConstant = "y"
	affirmativeLongResponseConstant  = "yes"
)

// IOConfirmationPrompter collects rewrite confirmations from an input stream.
// History rewrites are destructive, so anything other than an explicit
// affirmative response declines the operation.
type IOConfirmationPrompter struct {
	input  *bufio.Reader
	output io.Writer
}

// NewIOConfirmationPrompter constructs a prompter reading responses from input
// and echoing prompts to output.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{input: bufio.NewReader(input), output: output}
}

// Confirm writes the prompt and reports whether the response was affirmative.
// A closed input stream counts as a declined confirmation.
func (prompter *IOConfirmationPrompter) Confirm(prompt string) (bool, error) {
	if prompter.output != nil {
		if _, writeError := io.WriteString(prompter.output, prompt); writeError != nil {
			return false, writeError
		}
	}

	response, readError := prompter.input.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return false, readError
	}

	switch strings.TrimSpace(strings.ToLower(response)) {
	case affirmativeShortResponseConstant, affirmativeLongResponseConstant:
		return true, nil
	default:
		return false, nil
	}
}
