package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestJournalConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.csv")
	journal, err := OpenJournal(path, 20*time.Millisecond, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open journal: %v", err)
	}

	const workers, perWorker = 5, 40
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				r := Record{
					ID:         fmt.Sprintf("swap_%d_%d", w, i),
					Timestamp:  time.Now(),
					FromSymbol: "ETH",
					ToSymbol:   "USDC",
					FromAmount: "1",
					ToAmount:   "1662.837734",
					Success:    i%4 != 0,
				}
				if err := journal.Append(r); err != nil {
					t.Errorf("Failed to append: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	stats := journal.Stats()
	if stats.Appended != workers*perWorker {
		t.Errorf("Expected %d appended, got %d", workers*perWorker, stats.Appended)
	}
	if stats.Failed != workers*perWorker/4 {
		t.Errorf("Expected %d failed, got %d", workers*perWorker/4, stats.Failed)
	}
	if err := journal.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	records, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("Failed to read journal: %v", err)
	}
	if len(records) != workers*perWorker {
		t.Fatalf("Expected %d records, got %d", workers*perWorker, len(records))
	}
}

func TestJournalRoundTripAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.csv")
	want := generateTestRecords()

	for i, r := range want {
		journal, err := OpenJournal(path, 0, zap.NewNop())
		if err != nil {
			t.Fatalf("Failed to open journal: %v", err)
		}
		if err := journal.Append(r); err != nil {
			t.Fatalf("Failed to append record %d: %v", i, err)
		}
		if err := journal.Close(); err != nil {
			t.Fatalf("Failed to close: %v", err)
		}
	}

	got, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("Failed to read journal: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Success != want[i].Success || got[i].ToAmount != want[i].ToAmount {
			t.Errorf("Record %d mismatch: got %+v, want %+v", i, got[i], want[i])
		}
		if !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("Record %d timestamp: got %v, want %v", i, got[i].Timestamp, want[i].Timestamp)
		}
	}
	if s := Summarize(got); s.TotalSwaps != len(want) {
		t.Errorf("Summary counts %d swaps, want %d", s.TotalSwaps, len(want))
	}
}

func TestJournalAppendAfterClose(t *testing.T) {
	journal, err := OpenJournal(filepath.Join(t.TempDir(), "journal.csv"), time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open journal: %v", err)
	}
	if err := journal.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}
	if err := journal.Close(); err != nil {
		t.Fatalf("Second close should be a no-op: %v", err)
	}
	if err := journal.Append(Record{ID: "late"}); !errors.Is(err, ErrJournalClosed) {
		t.Fatalf("Expected ErrJournalClosed, got %v", err)
	}
}

func TestJournalPeriodicFlush(t *testing.T) {
	journal, err := OpenJournal(filepath.Join(t.TempDir(), "journal.csv"), 5*time.Millisecond, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open journal: %v", err)
	}
	defer journal.Close()

	if err := journal.Append(Record{ID: "swap1", Timestamp: time.Now()}); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for journal.Stats().Flushes < 2 {
		if time.Now().After(deadline) {
			t.Fatal("Expected periodic flushes")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReadJournalRejectsBadRows(t *testing.T) {
	header := strings.Join(CSVHeaders(), ",")
	cases := map[string]string{
		"timestamp": header + "\nid1,yesterday,ETH,USDC,1,2,2,1,0,true,\n",
		"success":   header + "\nid1,2023-08-29T07:10:40Z,ETH,USDC,1,2,2,1,0,maybe,\n",
		"columns":   header + "\nid1,2023-08-29T07:10:40Z\n",
	}
	for name, body := range cases {
		if _, err := readJournal(strings.NewReader(body)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}

	records, err := readJournal(strings.NewReader(header + "\n"))
	if err != nil || len(records) != 0 {
		t.Fatalf("Header-only journal: got %v, %v", records, err)
	}
}
