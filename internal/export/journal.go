// internal/export/journal.go
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrJournalClosed is returned by Append after Close.
var ErrJournalClosed = errors.New("swap journal is closed")

// JournalStats counts what a Journal has written since it was opened.
type JournalStats struct {
	Appended  uint64
	Succeeded uint64
	Failed    uint64
	Flushes   uint64
}

// Journal is an append-only CSV file of settled swaps. Rows use the
// CSVHeaders layout, so a journal can be read back with ReadJournal or
// opened in a spreadsheet. Appends are buffered and flushed on an interval
// and on Close.
type Journal struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	csv    *csv.Writer
	logger *zap.Logger
	stats  JournalStats
	closed bool

	stop chan struct{}
	done chan struct{}
}

// OpenJournal opens or creates the journal at path. The header row is
// written only into an empty file. A non-positive flushEvery disables the
// background flush.
func OpenJournal(path string, flushEvery time.Duration, logger *zap.Logger) (*Journal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat: %w", err)
	}

	j := &Journal{
		path:   path,
		file:   file,
		csv:    csv.NewWriter(file),
		logger: logger.Named("journal"),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if info.Size() == 0 {
		if err := j.csv.Write(CSVHeaders()); err != nil {
			file.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
		j.csv.Flush()
	}

	if flushEvery > 0 {
		go j.flushLoop(flushEvery)
	} else {
		close(j.done)
	}
	return j, nil
}

// Append buffers one receipt.
func (j *Journal) Append(r Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrJournalClosed
	}
	if err := j.csv.Write(r.ToCSV()); err != nil {
		return fmt.Errorf("append %s: %w", r.ID, err)
	}
	j.stats.Appended++
	if r.Success {
		j.stats.Succeeded++
	} else {
		j.stats.Failed++
	}
	return nil
}

// Sync writes buffered receipts through to disk.
func (j *Journal) Sync() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	return j.syncLocked()
}

func (j *Journal) syncLocked() error {
	j.csv.Flush()
	if err := j.csv.Error(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}
	j.stats.Flushes++
	return nil
}

func (j *Journal) flushLoop(every time.Duration) {
	defer close(j.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := j.Sync(); err != nil {
				j.logger.Error("Periodic journal flush failed", zap.String("file", j.path), zap.Error(err))
			}
		case <-j.stop:
			return
		}
	}
}

// Stats returns a snapshot of the counters.
func (j *Journal) Stats() JournalStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stats
}

// Close flushes and closes the file. Further calls are no-ops.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	j.mu.Unlock()

	select {
	case <-j.done:
	default:
		close(j.stop)
		<-j.done
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	err := j.syncLocked()
	if cerr := j.file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close journal: %w", cerr)
	}
	j.logger.Info("Swap journal closed",
		zap.String("file", j.path),
		zap.Uint64("appended", j.stats.Appended),
		zap.Uint64("failed", j.stats.Failed))
	return err
}

// ReadJournal loads every receipt from a journal file, oldest first.
func ReadJournal(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readJournal(f)
}

func readJournal(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(CSVHeaders())

	var records []Record
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("journal line %d: %w", line, err)
		}
		if line == 1 && row[0] == CSVHeaders()[0] {
			continue
		}
		rec, err := RecordFromCSV(row)
		if err != nil {
			return nil, fmt.Errorf("journal line %d: %w", line, err)
		}
		records = append(records, rec)
	}
}

// RecordFromCSV parses a row produced by Record.ToCSV.
func RecordFromCSV(row []string) (Record, error) {
	if len(row) != len(CSVHeaders()) {
		return Record{}, fmt.Errorf("want %d columns, got %d", len(CSVHeaders()), len(row))
	}
	ts, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		return Record{}, fmt.Errorf("timestamp: %w", err)
	}
	delay, err := strconv.ParseInt(row[8], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("delay_ms: %w", err)
	}
	success, err := strconv.ParseBool(row[9])
	if err != nil {
		return Record{}, fmt.Errorf("success: %w", err)
	}
	return Record{
		ID:         row[0],
		Timestamp:  ts,
		FromSymbol: row[2],
		ToSymbol:   row[3],
		FromAmount: row[4],
		ToAmount:   row[5],
		Rate:       row[6],
		USDValue:   row[7],
		DelayMS:    delay,
		Success:    success,
		Error:      row[10],
	}, nil
}
