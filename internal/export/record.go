package export

import (
	"strconv"
	"time"
)

// Record is one confirmed swap attempt as kept in the session history.
// Amounts are the displayed strings; USDValue is the source side value.
type Record struct {
	ID         string    `json:"id" yaml:"id"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	FromSymbol string    `json:"from_symbol" yaml:"from_symbol"`
	ToSymbol   string    `json:"to_symbol" yaml:"to_symbol"`
	FromAmount string    `json:"from_amount" yaml:"from_amount"`
	ToAmount   string    `json:"to_amount" yaml:"to_amount"`
	Rate       string    `json:"rate" yaml:"rate"`
	USDValue   string    `json:"usd_value" yaml:"usd_value"`
	DelayMS    int64     `json:"delay_ms" yaml:"delay_ms"`
	Success    bool      `json:"success" yaml:"success"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Pair returns "FROM/TO".
func (r Record) Pair() string {
	return r.FromSymbol + "/" + r.ToSymbol
}

// CSVHeaders returns the column names matching ToCSV.
func CSVHeaders() []string {
	return []string{
		"id", "timestamp", "from_symbol", "to_symbol", "from_amount",
		"to_amount", "rate", "usd_value", "delay_ms", "success", "error",
	}
}

// ToCSV renders r as a CSV row.
func (r Record) ToCSV() []string {
	return []string{
		r.ID,
		r.Timestamp.UTC().Format(time.RFC3339),
		r.FromSymbol,
		r.ToSymbol,
		r.FromAmount,
		r.ToAmount,
		r.Rate,
		r.USDValue,
		strconv.FormatInt(r.DelayMS, 10),
		strconv.FormatBool(r.Success),
		r.Error,
	}
}
