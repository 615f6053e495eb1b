package pricing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func waitForLandRate(t *testing.T, store *TableStore, want float64) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if store.Table().LandRate == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("table not reloaded, land rate still %f", store.Table().LandRate)
}

func writeTable(t *testing.T, path string, table BasePriceTable) {
	t.Helper()
	payload, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTableStoreInitializesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_prices.json")
	store, err := NewTableStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	if store.Table().LandRate != DefaultBasePrices().LandRate {
		t.Fatalf("expected default table, got land rate %f", store.Table().LandRate)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults not written to disk: %v", err)
	}
}

func TestTableStoreReloadsExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_prices.json")
	store, err := NewTableStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	modified := DefaultBasePrices()
	modified.LandRate = 750000
	writeTable(t, path, modified)

	waitForLandRate(t, store, 750000)
}

func TestTableStoreKeepsTableOnCorruptWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_prices.json")
	store, err := NewTableStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The previous table must survive the bad write.
	want := DefaultBasePrices().LandRate
	until := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(until) {
		if got := store.Table().LandRate; got != want {
			t.Fatalf("corrupt write replaced the table, land rate %f", got)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// And the watcher keeps working afterwards.
	modified := DefaultBasePrices()
	modified.LandRate = 900000
	writeTable(t, path, modified)
	waitForLandRate(t, store, 900000)
}
