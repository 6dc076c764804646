package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNoRecords is returned when no record matches the export criteria.
var ErrNoRecords = errors.New("no swaps match the export criteria")

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
)

// ParseFormat accepts csv, json, yaml or yml in any case.
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", s)
	}
}

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format       ExportFormat
	StartTime    time.Time
	EndTime      time.Time
	SymbolFilter string // matches either side of the pair
	OnlySuccess  bool
	OutputDir    string
}

// ReceiptExporter writes swap history to disk.
type ReceiptExporter struct {
	logger *zap.Logger
}

// NewReceiptExporter creates a new exporter
func NewReceiptExporter(logger *zap.Logger) *ReceiptExporter {
	return &ReceiptExporter{
		logger: logger.Named("export"),
	}
}

// ExportRecords filters, sorts and writes records, returning the file path.
func (re *ReceiptExporter) ExportRecords(records []Record, options ExportOptions) (string, error) {
	if _, err := ParseFormat(string(options.Format)); err != nil {
		return "", err
	}

	filtered := re.filterRecords(records, options)
	if len(filtered) == 0 {
		return "", ErrNoRecords
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.Before(filtered[j].Timestamp)
	})

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(options.OutputDir, re.generateFilename(options))

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	if err := re.Write(file, filtered, options.Format); err != nil {
		return "", err
	}

	re.logger.Info("Swaps exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// Write encodes records to w in format.
func (re *ReceiptExporter) Write(w io.Writer, records []Record, format ExportFormat) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(re.document(records)); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(re.document(records)); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

type document struct {
	ExportTime  time.Time     `json:"export_time" yaml:"export_time"`
	RecordCount int           `json:"record_count" yaml:"record_count"`
	Summary     ExportSummary `json:"summary" yaml:"summary"`
	Records     []Record      `json:"records" yaml:"records"`
}

func (re *ReceiptExporter) document(records []Record) document {
	return document{
		ExportTime:  time.Now().UTC(),
		RecordCount: len(records),
		Summary:     Summarize(records),
		Records:     records,
	}
}

func writeCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(r.ToCSV()); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (re *ReceiptExporter) filterRecords(records []Record, options ExportOptions) []Record {
	var filtered []Record
	symbol := strings.ToUpper(options.SymbolFilter)

	for _, r := range records {
		if !options.StartTime.IsZero() && r.Timestamp.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && r.Timestamp.After(options.EndTime) {
			continue
		}
		if symbol != "" && r.FromSymbol != symbol && r.ToSymbol != symbol {
			continue
		}
		if options.OnlySuccess && !r.Success {
			continue
		}
		filtered = append(filtered, r)
	}

	return filtered
}

func (re *ReceiptExporter) generateFilename(options ExportOptions) string {
	timestamp := time.Now().Format("20060102_150405")

	prefix := "swaps_all"
	if options.SymbolFilter != "" {
		prefix = "swaps_" + strings.ToLower(options.SymbolFilter)
	}
	if options.OnlySuccess {
		prefix += "_ok"
	}

	ext := string(options.Format)
	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, ext)
}

// ExportSummary contains summary statistics for exported swaps
type ExportSummary struct {
	TotalSwaps      int            `json:"total_swaps" yaml:"total_swaps"`
	SuccessfulSwaps int            `json:"successful_swaps" yaml:"successful_swaps"`
	FailedSwaps     int            `json:"failed_swaps" yaml:"failed_swaps"`
	SuccessRate     float64        `json:"success_rate" yaml:"success_rate"`
	UniquePairs     int            `json:"unique_pairs" yaml:"unique_pairs"`
	SwapsPerPair    map[string]int `json:"swaps_per_pair" yaml:"swaps_per_pair"`
	TotalUSDVolume  string         `json:"total_usd_volume" yaml:"total_usd_volume"`
	StartDate       time.Time      `json:"start_date" yaml:"start_date"`
	EndDate         time.Time      `json:"end_date" yaml:"end_date"`
}

// Summarize computes statistics over records, which must be sorted by time.
// USD volume counts successful swaps only.
func Summarize(records []Record) ExportSummary {
	summary := ExportSummary{
		TotalSwaps:     len(records),
		SwapsPerPair:   make(map[string]int),
		TotalUSDVolume: "0",
	}
	if len(records) == 0 {
		return summary
	}

	summary.StartDate = records[0].Timestamp
	summary.EndDate = records[len(records)-1].Timestamp

	volume := decimal.Zero
	for _, r := range records {
		summary.SwapsPerPair[r.Pair()]++
		if !r.Success {
			summary.FailedSwaps++
			continue
		}
		summary.SuccessfulSwaps++
		if v, err := decimal.NewFromString(r.USDValue); err == nil {
			volume = volume.Add(v)
		}
	}

	summary.UniquePairs = len(summary.SwapsPerPair)
	summary.SuccessRate = float64(summary.SuccessfulSwaps) / float64(summary.TotalSwaps) * 100
	summary.TotalUSDVolume = volume.String()
	return summary
}
