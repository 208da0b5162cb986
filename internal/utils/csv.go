package utils

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes headers followed by content rows to w.
func WriteCSV(w io.Writer, headers []string, content [][]string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range content {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
