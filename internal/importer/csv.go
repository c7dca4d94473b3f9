package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
)

// ParseCSV reads a UTF-8 CSV deck. A leading byte order mark is ignored.
func ParseCSV(r io.Reader) (*Result, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rowsToResult(records)
}
