package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"goinsight/domain/dataset"
	"goinsight/internal"
	"goinsight/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files into datasets
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	config   ReaderConfig
	logger   *internal.Logger
}

// NewDataReader creates a data reader; the file type follows the extension
func NewDataReader(filePath string, config ReaderConfig, logger *internal.Logger) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, config: config, logger: logger.Named("excel")}
}

// Name returns the dataset name the reader will produce
func (r *DataReader) Name() string {
	if r.config.Name != "" {
		return r.config.Name
	}
	base := filepath.Base(r.filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load implements ports.DataSourcePort
func (r *DataReader) Load(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := r.ReadData()
	if err != nil {
		return nil, errors.DataSource(r.filePath, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.ToDataset(data), nil
}

// ReadData reads the raw header and rows from the file
func (r *DataReader) ReadData() (*ExcelData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) readExcelData() (*ExcelData, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	r.logger.Debug("sheet %s read in %s (%d rows)", sheet, time.Since(start).Round(time.Microsecond), len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}
	return r.processRows(rows), nil
}

func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	start := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("CSV read in %s (%d rows)", time.Since(start).Round(time.Microsecond), len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV file has no header row")
	}
	return r.processRows(rows), nil
}

// processRows converts raw string rows into ExcelData. Blank headers are
// named after their column position; fully blank rows are skipped.
func (r *DataReader) processRows(rows [][]string) *ExcelData {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
		if headers[i] == "" {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		blank := true
		for j, cell := range row {
			if j >= len(headers) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				blank = false
			}
			rowData[headers[j]] = cell
		}
		if !blank {
			dataRows = append(dataRows, rowData)
		}
	}

	r.logger.Info("%s file processed (%d columns, %d rows)", strings.ToUpper(r.fileType), len(headers), len(dataRows))
	return &ExcelData{Headers: headers, Rows: dataRows}
}

// InferColumnTypes types every column, honouring declared types
func (r *DataReader) InferColumnTypes(data *ExcelData) []dataset.Field {
	fields := make([]dataset.Field, len(data.Headers))
	for i, header := range data.Headers {
		if typ, ok := r.config.Types[header]; ok {
			fields[i] = dataset.Field{Name: header, Type: typ}
			continue
		}
		analysis := AnalyzeColumn(data.Column(header), r.config.Inference)
		fields[i] = dataset.Field{Name: header, Type: InferFieldType(header, analysis, r.config.Inference)}
		r.logger.Trace("column %s: numeric %.2f timestamp %.2f -> %s",
			header, analysis.NumericRatio, analysis.TimestampRatio, fields[i].Type)
	}
	return fields
}

// ToDataset types the columns and converts every row into a record
func (r *DataReader) ToDataset(data *ExcelData) *dataset.Dataset {
	fields := r.InferColumnTypes(data)
	records := make([]dataset.Record, len(data.Rows))
	for i, row := range data.Rows {
		rec := make(dataset.Record, len(fields))
		for _, f := range fields {
			rec[f.Name] = CoerceCell(row[f.Name], f.Type)
		}
		records[i] = rec
	}
	return dataset.New(r.Name(), fields, records)
}
