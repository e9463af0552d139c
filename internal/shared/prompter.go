package shared

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	affirmativeAnswerPrefixConstant = "y"
	lineTerminatorConstant          = "\n"
	carriageReturnConstant          = "\r"
	inputClosedMessageConstant      = "operator input closed before a response was entered"
)

// ErrInputClosed indicates the operator input ended without a response.
var ErrInputClosed = errors.New(inputClosedMessageConstant)

// IOPrompter reads operator responses from an io.Reader and writes prompts to an io.Writer.
type IOPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOPrompter constructs a prompter from the provided reader and writer.
func NewIOPrompter(input io.Reader, output io.Writer) *IOPrompter {
	return &IOPrompter{reader: bufio.NewReader(input), writer: output}
}

// Confirm writes the prompt and treats any answer starting with y or Y as affirmative.
// Closed input counts as a refusal.
func (prompter *IOPrompter) Confirm(prompt string) (ConfirmationResult, error) {
	response, readError := prompter.prompt(prompt)
	if readError != nil && !errors.Is(readError, io.EOF) {
		return ConfirmationResult{}, readError
	}

	return ConfirmationResult{Confirmed: strings.HasPrefix(strings.ToLower(response), affirmativeAnswerPrefixConstant)}, nil
}

// ReadLine writes the prompt and returns the next line without its terminator.
// Closed input with no pending text yields ErrInputClosed.
func (prompter *IOPrompter) ReadLine(prompt string) (string, error) {
	response, readError := prompter.prompt(prompt)
	if readError != nil {
		if !errors.Is(readError, io.EOF) {
			return "", readError
		}
		if len(response) == 0 {
			return "", ErrInputClosed
		}
	}

	return strings.TrimSuffix(strings.TrimSuffix(response, lineTerminatorConstant), carriageReturnConstant), nil
}

func (prompter *IOPrompter) prompt(prompt string) (string, error) {
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, prompt); writeError != nil {
			return "", writeError
		}
	}
	return prompter.reader.ReadString('\n')
}
