package upload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// PreviewRows is how many data lines a preview shows.
const PreviewRows = 5

// ErrEmptyFile is returned when the file has no header line.
var ErrEmptyFile = errors.New("file is empty")

// Preview is a quick look at the top of a CSV file. Lines are split on bare
// commas; quoting is not understood. The backend does the real parse.
type Preview struct {
	Header []string
	Rows   [][]string
	// Truncated is set when the file has more data lines than were read.
	Truncated bool
	// Warnings lists rows whose width differs from the header.
	Warnings []string
}

// ParsePreview reads the header and at most PreviewRows data lines from r.
// Blank lines are skipped. Nothing past the preview is read.
func ParsePreview(r io.Reader) (*Preview, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	p := &Preview{}
	line := 0
	for sc.Scan() {
		text := strings.TrimRight(sc.Text(), "\r")
		line++
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !utf8.ValidString(text) {
			return nil, fmt.Errorf("line %d is not valid UTF-8 text", line)
		}

		fields := strings.Split(text, ",")
		if p.Header == nil {
			p.Header = fields
			continue
		}
		if len(p.Rows) == PreviewRows {
			p.Truncated = true
			break
		}
		if len(fields) != len(p.Header) {
			p.Warnings = append(p.Warnings,
				fmt.Sprintf("line %d has %d fields, header has %d", line, len(fields), len(p.Header)))
		}
		p.Rows = append(p.Rows, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read preview: %w", err)
	}
	if p.Header == nil {
		return nil, ErrEmptyFile
	}
	return p, nil
}
