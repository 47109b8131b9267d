package main

import (
	"strings"
	"testing"
)

func TestRenderTableRightAlignsRequestedColumns(t *testing.T) {
	out := renderTable(
		[]string{"ID", "File"},
		[][]string{{"7", "a.mkv"}},
		1,
	)
	if !strings.Contains(out, "ID") || !strings.Contains(out, "a.mkv") {
		t.Fatalf("missing headers or cells:\n%s", out)
	}
	// The id column is two wide ("ID"); a right-aligned "7" pads on the left.
	if !strings.Contains(out, "│  7 │") {
		t.Fatalf("id column not right-aligned:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"A", "B", "C"},
		[][]string{{"only"}},
	)
	if !strings.Contains(out, "only") {
		t.Fatalf("short row dropped:\n%s", out)
	}
	if lines := strings.Split(out, "\n"); len(lines) < 4 {
		t.Fatalf("unexpected table shape:\n%s", out)
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty render, got %q", out)
	}
}
