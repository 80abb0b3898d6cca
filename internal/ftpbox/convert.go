package ftpbox

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ConvertPipeToCSV rewrites a pipe-delimited feed as comma-separated CSV and
// returns the number of data rows (header excluded). Blank lines are skipped.
func ConvertPipeToCSV(r io.Reader, w io.Writer) (int, error) {
	in := csv.NewReader(r)
	in.Comma = '|'
	in.LazyQuotes = true
	in.FieldsPerRecord = -1
	in.ReuseRecord = true

	out := csv.NewWriter(w)
	rows := -1
	for {
		rec, err := in.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return max(rows, 0), fmt.Errorf("read feed line %d: %w", rows+2, err)
		}
		for i := range rec {
			rec[i] = strings.Trim(strings.TrimSpace(rec[i]), `"`)
		}
		if err := out.Write(rec); err != nil {
			return max(rows, 0), err
		}
		rows++
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return max(rows, 0), err
	}
	return max(rows, 0), nil
}
