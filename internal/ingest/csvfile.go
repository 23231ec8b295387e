package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ReadCSV parses an uploaded CSV batch into raw rows, matching columns
// by header name (case-insensitive): date, name (or description or
// merchant), amount, and optionally category and accountId. Rows
// shorter than the header are skipped; field-level validation happens
// later in FromRawRows.
func ReadCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []RawRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	dateIdx, ok := columnIndex(cols, "date")
	if !ok {
		return nil, fmt.Errorf("ReadCSV: missing 'date' column")
	}
	nameIdx, ok := columnIndex(cols, "name", "description", "merchant")
	if !ok {
		return nil, fmt.Errorf("ReadCSV: missing 'name' column")
	}
	amountIdx, ok := columnIndex(cols, "amount")
	if !ok {
		return nil, fmt.Errorf("ReadCSV: missing 'amount' column")
	}
	categoryIdx, hasCategory := columnIndex(cols, "category")
	accountIdx, hasAccount := columnIndex(cols, "accountid", "account_id", "account")

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadCSV: reading record: %w", err)
		}
		if len(record) <= dateIdx || len(record) <= nameIdx || len(record) <= amountIdx {
			continue
		}

		row := RawRow{
			Date:   record[dateIdx],
			Name:   record[nameIdx],
			Amount: json.Number(strings.TrimSpace(record[amountIdx])),
		}
		if hasCategory && len(record) > categoryIdx {
			row.Category = record[categoryIdx]
		}
		if hasAccount && len(record) > accountIdx {
			row.AccountID = record[accountIdx]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func columnIndex(cols map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if idx, ok := cols[name]; ok {
			return idx, true
		}
	}
	return 0, false
}
