package command

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnterminatedQuote is returned by Parse for a line with an odd number of
// double quotes.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command. A double-quoted run
	// forms a single word with the quotes removed.
	Args []string
	// RawArgs is the raw text after the command (preserving spacing for notes).
	RawArgs string
	// Err is set when Args could not be split.
	Err error
}

// Parse splits a text line into a command and arguments.
//
// Precondition: line should be trimmed of leading/trailing whitespace.
// Postcondition: Returns a ParseResult. If line is empty, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	// Split at first space for the command word
	spaceIdx := strings.IndexByte(line, ' ')
	if spaceIdx < 0 {
		return ParseResult{
			Command: strings.ToLower(line),
		}
	}

	cmd := strings.ToLower(line[:spaceIdx])
	rest := line[spaceIdx+1:]
	rest = strings.TrimSpace(rest)

	args, err := splitWords(rest)
	return ParseResult{
		Command: cmd,
		Args:    args,
		RawArgs: rest,
		Err:     err,
	}
}

// splitWords splits s on whitespace, keeping double-quoted runs together.
// A quote may start mid-word: notes="two words" yields `notes=two words`.
func splitWords(s string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inQuote bool
		inWord  bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			inWord = true
		case !inQuote && (r == ' ' || r == '\t'):
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inQuote {
		return nil, ErrUnterminatedQuote
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}

// ParseParams converts key=value words into a map. Keys are lowercased; a
// value may be empty.
//
// Postcondition: Returns an error naming the first word without '='.
func ParseParams(words []string) (map[string]string, error) {
	params := make(map[string]string, len(words))
	for _, w := range words {
		k, v, ok := strings.Cut(w, "=")
		k = strings.ToLower(strings.TrimSpace(k))
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", w)
		}
		params[k] = v
	}
	return params, nil
}
