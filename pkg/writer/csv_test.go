package writer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

type testRow struct {
	Name  string
	Value int
}

func TestCSVWriter_WriteRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	w, err := NewCSVWriter(path, []string{"name", "value"}, func(r testRow) []string {
		return []string{r.Name, "42"}
	})
	if err != nil {
		t.Fatalf("NewCSVWriter failed: %v", err)
	}

	if err := w.WriteRow(testRow{Name: "a", Value: 1}); err != nil {
		t.Fatalf("WriteRow failed: %v", err)
	}
	if err := w.WriteRow(testRow{Name: "b", Value: 2}); err != nil {
		t.Fatalf("WriteRow failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open written file: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read csv: %v", err)
	}
	want := [][]string{{"name", "value"}, {"a", "42"}, {"b", "42"}}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i][0] != want[i][0] || rows[i][1] != want[i][1] {
			t.Errorf("row %d: expected %v, got %v", i, want[i], rows[i])
		}
	}
}

func TestCSVWriter_Flush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	w, err := NewCSVWriter(path, []string{"name"}, func(r testRow) []string {
		return []string{r.Name}
	})
	if err != nil {
		t.Fatalf("NewCSVWriter failed: %v", err)
	}
	defer w.Close()

	if err := w.WriteRow(testRow{Name: "a"}); err != nil {
		t.Fatalf("WriteRow failed: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected data to be visible on disk after Flush")
	}
}
