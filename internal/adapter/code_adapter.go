package adapter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	m "sieve.dev/pkg/sieve/internal/model"
)

// ErrInvalidFunction reports code that is not exactly one well-formed test function.
var ErrInvalidFunction = errors.New("not a standalone test function")

// CodeAdapter hides the language specific parsing of test code.
type CodeAdapter interface {
	// Language returns the language handled by the adapter.
	Language() m.Language

	// ExtractFunctions returns every well-formed test function found in a free
	// text generation response. Prose and broken fragments are discarded.
	ExtractFunctions(ctx context.Context, response string) []string

	// CheckFunction validates code as exactly one standalone test function and
	// returns the function name.
	CheckFunction(ctx context.Context, code string) (string, error)

	// Normalize canonicalizes code so that formatting-only variants compare equal.
	Normalize(ctx context.Context, code string) (string, error)

	// Merge appends candidate to the original test file contents.
	Merge(ctx context.Context, testFile m.Path, original []byte, candidate string) ([]byte, error)
}

// NewCodeAdapter returns the CodeAdapter for lang.
func NewCodeAdapter(lang m.Language) (CodeAdapter, error) {
	switch lang {
	case m.LanguageGo:
		return NewGoCodeAdapter(), nil
	case m.LanguagePython:
		return NewPythonCodeAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
}

var (
	fencePattern     = regexp.MustCompile("(?s)```[ \\t]*([A-Za-z0-9_+-]*)[^\\n]*\\n(.*?)(?:```|\\z)")
	blankRunsPattern = regexp.MustCompile(`\n{3,}`)
)

// codeBlocks returns the fenced blocks of a response whose tag is empty or one
// of tags. A response without fences is returned as a single block.
func codeBlocks(response string, tags ...string) []string {
	matches := fencePattern.FindAllStringSubmatch(response, -1)
	if len(matches) == 0 {
		return []string{response}
	}

	blocks := make([]string, 0, len(matches))

	for _, match := range matches {
		tag := strings.ToLower(match[1])
		if tag != "" && !containsString(tags, tag) {
			continue
		}

		blocks = append(blocks, match[2])
	}

	return blocks
}

// NormalizeText canonicalizes line endings and whitespace without touching
// indentation: CRLF and CR become LF, trailing spaces are dropped and runs of
// blank lines collapse into one.
func NormalizeText(code string) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.ReplaceAll(code, "\r", "\n")

	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	code = strings.Join(lines, "\n")
	code = blankRunsPattern.ReplaceAllString(code, "\n\n")

	return strings.Trim(code, "\n")
}

// dedent removes the indentation shared by every non blank line.
func dedent(code string) string {
	lines := strings.Split(code, "\n")
	prefix := ""
	first := true

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false

			continue
		}

		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	if prefix == "" {
		return code
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}

	return strings.Join(lines, "\n")
}

// chunkFunctions splits text into fragments that start at a line accepted by
// isStart, keep every following line accepted by isBody and stop either after a
// line accepted by isEnd or right before a line that is not part of the body.
// It is the fallback for responses that do not parse as a whole.
func chunkFunctions(text string, isStart, isBody, isEnd func(line string) bool) []string {
	var (
		chunks  []string
		current []string
	)

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.TrimRight(strings.Join(current, "\n"), "\n"))
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		switch {
		case isStart(line):
			flush()

			current = []string{line}
		case current != nil && isEnd(line):
			current = append(current, line)
			flush()
		case current != nil && isBody(line):
			current = append(current, line)
		default:
			flush()
		}
	}

	flush()

	return chunks
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}
