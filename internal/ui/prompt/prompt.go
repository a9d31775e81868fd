package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user to confirm destructive operations
type Prompter interface {
	// Confirm requires the user to type expectedValue exactly
	Confirm(message string, expectedValue string) (bool, error)
	// YesNo accepts y/yes or n/no; an empty answer picks defaultYes
	YesNo(question string, defaultYes bool) (bool, error)
}

type StandardPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

func NewStandardPrompter(in io.Reader, out io.Writer) *StandardPrompter {
	return &StandardPrompter{
		reader: bufio.NewReader(in),
		writer: out,
	}
}

func (p *StandardPrompter) Confirm(message string, expectedValue string) (bool, error) {
	if expectedValue == "" {
		return false, fmt.Errorf("expected confirmation value cannot be empty")
	}

	fmt.Fprintln(p.writer, message)
	fmt.Fprintf(p.writer, "To confirm, please type '%s': ", expectedValue)

	input, err := p.readLine()
	if err != nil {
		return false, err
	}
	return input == expectedValue, nil
}

func (p *StandardPrompter) YesNo(question string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprintf(p.writer, "%s %s: ", question, hint)

	input, err := p.readLine()
	if err != nil {
		return false, err
	}

	switch strings.ToLower(input) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// readLine returns the trimmed line; input closed without a newline still counts
func (p *StandardPrompter) readLine() (string, error) {
	input, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("error reading user input: %w", err)
	}
	return strings.TrimSpace(input), nil
}
