package excel

// RawRowData represents a row of raw spreadsheet data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents the complete sheet or CSV file
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Column returns the raw cells of one header, in row order
func (d *ExcelData) Column(header string) []string {
	out := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[header]
	}
	return out
}
