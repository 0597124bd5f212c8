// Package edgelist reads and writes plain-text edge lists: one node pair per
// line, separated by whitespace or a comma. Blank lines and lines starting
// with '#' are skipped.
package edgelist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseError reports a malformed line
type ParseError struct {
	Path string
	Line int
	Text string
}

func (e *ParseError) Error() string {
	name := e.Path
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d: expected two nodes, got %q", name, e.Line, e.Text)
}

// Parse reads an edge list. Fields beyond the first two (weights, labels)
// are ignored.
func Parse(r io.Reader) ([][2]string, error) {
	var pairs [][2]string

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.FieldsFunc(line, isSeparator)
		if len(fields) < 2 {
			return nil, &ParseError{Line: lineNo, Text: line}
		}

		pairs = append(pairs, [2]string{fields[0], fields[1]})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return pairs, nil
}

func isSeparator(r rune) bool {
	return r == ',' || r == ' ' || r == '\t' || r == ';'
}

// Read parses the edge list stored at path
func Read(path string) ([][2]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	pairs, err := Parse(file)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
			return nil, pe
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return pairs, nil
}

// Write emits one tab-separated pair per line
func Write(w io.Writer, pairs [][2]string) error {
	bw := bufio.NewWriter(w)
	for _, p := range pairs {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", p[0], p[1]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
