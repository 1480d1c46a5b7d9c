// Package pairfile reads and writes the per-language intermediate files:
// one CSV of (local title, bridge title) pairs per requested language.
// They let a rerun skip the expensive dump scan (`wikibridge merge`), and
// double as a human-inspectable record of what extraction saw.
package pairfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Header of every pair file. Files with a different first record are
// rejected rather than guessed at.
var header = []string{"local_title", "bridge_title"}

// ErrBadHeader reports a pair file whose first record is not the expected
// header.
var ErrBadHeader = errors.New("pair file: unexpected header")

// Path is the conventional pair-file location for one language.
func Path(dir, lang, bridge string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_pairs.csv", lang, bridge))
}

// Writer appends pairs to a CSV file, header first.
type Writer struct {
	f  *os.File
	cw *csv.Writer
	n  int
}

// Create opens path for writing and emits the header.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &Writer{f: f, cw: csv.NewWriter(f)}
	if err := w.cw.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// Add writes one pair.
func (w *Writer) Add(local, bridge string) error {
	w.n++
	return w.cw.Write([]string{local, bridge})
}

// Count returns the number of pairs written so far.
func (w *Writer) Count() int { return w.n }

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// Read streams the pairs in path into emit, in file order. Records with a
// missing field are skipped: pair files are regenerated wholesale, so a
// short record only ever means a run was interrupted mid-write.
func Read(path string, emit func(local, bridge string) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	first, err := cr.Read()
	if err == io.EOF {
		return 0, fmt.Errorf("%w: empty file %s", ErrBadHeader, path)
	}
	if err != nil {
		return 0, err
	}
	if len(first) != 2 || first[0] != header[0] || first[1] != header[1] {
		return 0, fmt.Errorf("%w: %s", ErrBadHeader, path)
	}

	n := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if len(rec) < 2 || rec[0] == "" || rec[1] == "" {
			continue
		}
		n++
		if err := emit(rec[0], rec[1]); err != nil {
			return n, err
		}
	}
}
