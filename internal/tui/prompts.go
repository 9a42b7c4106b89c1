package tui

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// maxLineLen bounds a single answer. Longer lines are reported and the
// prompt is repeated.
const maxLineLen = 1024

// readLine prompts and returns the trimmed input line. ok is false at end of
// input or when input cannot be read.
func (m *Menu) readLine(prompt string) (string, bool) {
	for {
		if prompt != "" {
			fmt.Fprint(m.out, prompt)
		}
		line, err := m.in.ReadString('\n')
		if err != nil && line == "" {
			if !errors.Is(err, io.EOF) {
				log.Error().Err(err).Msg("reading input failed")
			}
			m.eof = true
			return "", false
		}
		if len(line) > maxLineLen {
			ShowError(m.out, fmt.Sprintf("Input too long (%d characters), please try again.", len(line)))
			continue
		}
		return strings.TrimSpace(line), true
	}
}

// chooseBranch lists the known parks and accepts a list number or a park
// name. Unknown names pass through unchanged. Empty input cancels.
func (m *Menu) chooseBranch() (string, bool) {
	branches := m.q.Branches()
	if len(branches) == 0 {
		ShowError(m.out, "No parks are available in the dataset.")
		return "", false
	}

	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "Available parks:")
	for i, b := range branches {
		fmt.Fprintf(m.out, "%d. %s\n", i+1, b)
	}
	fmt.Fprintln(m.out, "Press ENTER without typing anything to cancel.")

	for {
		raw, ok := m.readLine("Choose a park by number or name: ")
		if !ok || raw == "" {
			return "", false
		}
		if n, err := strconv.Atoi(raw); err == nil {
			if n < 1 || n > len(branches) {
				ShowError(m.out, "That number is not in the list of parks.")
				continue
			}
			return branches[n-1], true
		}
		for _, b := range branches {
			if strings.EqualFold(b, raw) {
				return b, true
			}
		}
		return raw, true
	}
}

// chooseTopN returns the default on empty input and cancels on anything that
// is not a positive integer.
func (m *Menu) chooseTopN() (int, bool) {
	fmt.Fprintf(m.out, "\nHow many top locations would you like to see? (default %d)\n", m.topN)
	raw, ok := m.readLine("Enter a positive number, or press ENTER for the default: ")
	if !ok {
		return 0, false
	}
	if raw == "" {
		return m.topN, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		ShowError(m.out, "Please enter a positive integer value.")
		return 0, false
	}
	if n <= 0 {
		ShowError(m.out, "The number must be greater than zero.")
		return 0, false
	}
	return n, true
}
