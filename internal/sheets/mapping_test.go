package sheets

import "testing"

func TestHeaderIndex_NormalizesAndKeepsFirst(t *testing.T) {
	idx := HeaderIndex([]string{" ID ", "First_Name", "", "first_name", "Status"})

	if got := Column(idx, "id"); got != 0 {
		t.Errorf("expected id at 0, got %d", got)
	}
	if got := Column(idx, "first_name"); got != 1 {
		t.Errorf("expected first occurrence of first_name at 1, got %d", got)
	}
	if got := Column(idx, "status"); got != 4 {
		t.Errorf("expected status at 4, got %d", got)
	}
	if got := Column(idx, "missing"); got != -1 {
		t.Errorf("expected -1 for unknown header, got %d", got)
	}
}

func TestCell_RaggedRows(t *testing.T) {
	row := []string{"S1", " Anna "}

	if got := Cell(row, 0); got != "S1" {
		t.Errorf("expected S1, got %q", got)
	}
	if got := Cell(row, 1); got != "Anna" {
		t.Errorf("expected trimmed Anna, got %q", got)
	}
	if got := Cell(row, 5); got != "" {
		t.Errorf("expected empty for short row, got %q", got)
	}
	if got := Cell(row, -1); got != "" {
		t.Errorf("expected empty for unknown column, got %q", got)
	}
}

func TestParseBool_Vocabulary(t *testing.T) {
	truthy := []string{"true", "TRUE", "1", "yes", "Tak", "tak", "y", "T", " t "}
	for _, s := range truthy {
		if !ParseBool(s) {
			t.Errorf("expected %q to parse as true", s)
		}
	}

	falsy := []string{"", "false", "0", "no", "nie", "n", "2", "present"}
	for _, s := range falsy {
		if ParseBool(s) {
			t.Errorf("expected %q to parse as false", s)
		}
	}
}
