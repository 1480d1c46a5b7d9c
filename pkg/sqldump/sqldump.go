// Package sqldump streams rows out of MySQL dump files of the kind
// published on dumps.wikimedia.org (langlinks.sql.gz, page.sql.gz).
//
// A dump is a sequence of very long lines, each holding one
// "INSERT INTO `tbl` VALUES (...),(...),...;" statement. The scanner never
// loads a dump into memory: it walks the stream line by line and hands each
// VALUES tuple to a callback as a slice of decoded column strings.
package sqldump

import (
	"bufio"
	"io"
	"strings"
)

// ScanStats counts what one scan saw. Malformed lines are skipped and
// counted, never fatal: a truncated download should still yield every row
// that made it to disk.
type ScanStats struct {
	Lines     int
	Inserts   int
	Tuples    int
	Malformed int
}

const (
	insertPrefix = "INSERT INTO"
	valuesMarker = " VALUES "

	// Dump lines routinely exceed a megabyte; page.sql lines from the
	// large editions run to tens of megabytes.
	scanBufInitial = 64 * 1024
	scanBufMax     = 64 * 1024 * 1024

	progressStep = 1000
)

// InsertScanner scans INSERT statements out of a dump stream.
type InsertScanner struct {
	// Progress, when set, is called every progressStep lines with the
	// running line and tuple counts.
	Progress func(lines, tuples int)

	Stats ScanStats
}

// Scan reads r to EOF, invoking fn once per VALUES tuple with the decoded
// column values. A non-nil error from fn aborts the scan and is returned
// unwrapped so callers can use sentinel errors to stop early.
func (s *InsertScanner) Scan(r io.Reader, fn func(values []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, scanBufInitial), scanBufMax)

	for scanner.Scan() {
		line := scanner.Text()
		s.Stats.Lines++
		if s.Progress != nil && s.Stats.Lines%progressStep == 0 {
			s.Progress(s.Stats.Lines, s.Stats.Tuples)
		}

		if !strings.HasPrefix(line, insertPrefix) {
			continue
		}
		idx := strings.Index(line, valuesMarker)
		if idx < 0 {
			s.Stats.Malformed++
			continue
		}
		s.Stats.Inserts++

		if err := s.splitTuples(line[idx+len(valuesMarker):], fn); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// splitTuples walks a "(...),(...),...;" VALUES list. Single-quoted strings
// may contain commas, parens and backslash escapes; everything else
// (numbers, NULL) is copied through verbatim.
func (s *InsertScanner) splitTuples(list string, fn func(values []string) error) error {
	var (
		field   strings.Builder
		values  []string
		inQuote bool
		escaped bool
		depth   int
	)

	flushField := func() {
		values = append(values, field.String())
		field.Reset()
	}

	for i := 0; i < len(list); i++ {
		c := list[i]

		if escaped {
			field.WriteByte(unescapeByte(c))
			escaped = false
			continue
		}

		switch {
		case inQuote && c == '\\':
			escaped = true
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
			field.WriteByte(c)
		case c == '(':
			depth++
			if depth == 1 {
				values = values[:0]
			} else {
				field.WriteByte(c)
			}
		case c == ')':
			depth--
			if depth == 0 {
				flushField()
				tuple := make([]string, len(values))
				copy(tuple, values)
				s.Stats.Tuples++
				if err := fn(tuple); err != nil {
					return err
				}
			} else if depth > 0 {
				field.WriteByte(c)
			} else {
				// Stray close paren; resync.
				s.Stats.Malformed++
				depth = 0
			}
		case c == ',' && depth == 1:
			flushField()
		case depth >= 1:
			field.WriteByte(c)
		}
	}

	if inQuote || depth != 0 {
		s.Stats.Malformed++
	}
	return nil
}

// unescapeByte decodes the character following a backslash inside a quoted
// MySQL string literal.
func unescapeByte(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case 'Z':
		return 0x1a
	default:
		// \', \", \\ and anything unrecognized: the character itself.
		return c
	}
}
