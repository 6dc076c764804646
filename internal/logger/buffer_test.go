package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLogBufferConcurrentAccess(t *testing.T) {
	spillFile := filepath.Join(t.TempDir(), "test_spill.log")

	buffer, err := NewLogBuffer(100, spillFile, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create log buffer: %v", err)
	}
	defer buffer.Close()

	done := buffer.StartPeriodicFlush(50 * time.Millisecond)
	defer close(done)

	logger, err := CreateTUILoggerWithBuffer(true, buffer)
	if err != nil {
		t.Fatalf("Failed to create TUI logger: %v", err)
	}

	var wg sync.WaitGroup
	numGoroutines := 10
	logsPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < logsPerGoroutine; j++ {
				logger.Info("Quote refreshed", zap.Int("goroutine", id), zap.Int("iteration", j))
			}
		}(i)
	}

	readersDone := make(chan struct{})
	go func() {
		defer close(readersDone)
		for i := 0; i < 20; i++ {
			_ = buffer.GetRecentLogs(10)
			_, _ = buffer.GetStats()
			time.Sleep(5 * time.Millisecond)
		}
	}()

	wg.Wait()
	<-readersDone

	if err := buffer.Flush(); err != nil {
		t.Errorf("Failed to flush: %v", err)
	}

	total, spilled := buffer.GetStats()
	expectedTotal := uint64(numGoroutines * logsPerGoroutine)
	if total != expectedTotal {
		t.Errorf("Expected %d total entries, got %d", expectedTotal, total)
	}
	if spilled != expectedTotal-100 {
		t.Errorf("Expected %d spilled entries, got %d", expectedTotal-100, spilled)
	}
}

func TestLogBufferRingBufferBehavior(t *testing.T) {
	spillFile := filepath.Join(t.TempDir(), "test_ring.log")

	bufferSize := 5
	buffer, err := NewLogBuffer(bufferSize, spillFile, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create log buffer: %v", err)
	}

	for i := 0; i < 10; i++ {
		if err := buffer.Add("info", fmt.Sprintf("Log %d", i), nil); err != nil {
			t.Errorf("Failed to add log: %v", err)
		}
	}

	logs := buffer.GetRecentLogs(10)
	if len(logs) != bufferSize {
		t.Fatalf("Expected %d logs in buffer, got %d", bufferSize, len(logs))
	}
	if logs[0].Message != "Log 5" || logs[len(logs)-1].Message != "Log 9" {
		t.Errorf("Expected Log 5..Log 9, got %s..%s", logs[0].Message, logs[len(logs)-1].Message)
	}

	recent := buffer.GetRecentLogs(2)
	if len(recent) != 2 || recent[0].Message != "Log 8" || recent[1].Message != "Log 9" {
		t.Errorf("Expected the two newest entries, got %+v", recent)
	}

	if err := buffer.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	// 5 spilled while wrapping plus 5 flushed on close.
	if n := countLines(t, spillFile); n != 10 {
		t.Errorf("Expected 10 spilled lines, got %d", n)
	}
}

func TestLogBufferWriteParsesZapJSON(t *testing.T) {
	buffer, err := NewLogBuffer(10, filepath.Join(t.TempDir(), "spill.log"), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create log buffer: %v", err)
	}
	defer buffer.Close()

	logger, err := CreateTUILoggerWithBuffer(false, buffer)
	if err != nil {
		t.Fatalf("Failed to create TUI logger: %v", err)
	}
	logger.Named("session").Info("Swap confirmed", zap.String("pair", "ETH/USDC"))
	logger.Debug("Hidden at info level")

	logs := buffer.GetRecentLogs(0)
	if len(logs) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(logs))
	}
	entry := logs[0]
	if entry.Level != "info" || entry.Message != "Swap confirmed" {
		t.Errorf("Unexpected entry: %+v", entry)
	}
	if entry.Fields["pair"] != "ETH/USDC" || entry.Fields["logger"] != "session" {
		t.Errorf("Expected pair and logger fields, got %v", entry.Fields)
	}
	if time.Since(entry.Timestamp) > time.Minute {
		t.Errorf("Timestamp not parsed: %v", entry.Timestamp)
	}

	if _, err := buffer.Write([]byte("plain text\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if last := buffer.GetRecentLogs(1)[0]; last.Message != "plain text" {
		t.Errorf("Expected raw text entry, got %q", last.Message)
	}
}

func TestNewLogBufferRejectsBadSize(t *testing.T) {
	if _, err := NewLogBuffer(0, filepath.Join(t.TempDir(), "x.log"), zap.NewNop()); err == nil {
		t.Error("Expected error for zero size")
	}
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
	}
	return n
}
