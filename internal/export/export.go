// Package export serializes a correspondence table to a delimited file.
//
// The header row carries language codes in the configured column order
// (requested languages first, bridge last). Absent correspondences —
// possible only under the outer join policy — serialize as an empty field;
// titles themselves are never empty, so an empty field is unambiguous.
package export

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/Migoreng/wikipedia-multilingual-links/pkg/langtable"
)

// Write emits table on w using the given field delimiter (',' or '\t').
func Write(w io.Writer, table *langtable.Table, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(table.Columns); err != nil {
		return err
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, code := range table.Columns {
			record[i] = row[code]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes table to path, creating or truncating it.
func WriteFile(path string, table *langtable.Table, delimiter rune) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, table, delimiter); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
