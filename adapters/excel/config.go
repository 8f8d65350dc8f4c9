package excel

import "goinsight/domain/dataset"

// ReaderConfig holds configuration for a spreadsheet data source
type ReaderConfig struct {
	Sheet     string                       `json:"sheet"`      // XLSX sheet; empty means the first sheet
	Name      string                       `json:"name"`       // dataset name; empty means the file's base name
	Types     map[string]dataset.FieldType `json:"types"`      // declared types that skip inference
	Inference InferenceConfig              `json:"inference"`
}

// InferenceConfig defines the thresholds used to type a column
type InferenceConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold"`   // share of cells that must parse as numbers
	TimestampThreshold float64 `json:"timestamp_threshold"` // share of cells that must parse as timestamps
	MinYear            int     `json:"min_year"`
	MaxYear            int     `json:"max_year"`
}

// DefaultReaderConfig returns sensible defaults
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Inference: InferenceConfig{
			NumericThreshold:   0.8,
			TimestampThreshold: 0.8,
			MinYear:            1900,
			MaxYear:            2100,
		},
	}
}
