package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()

	wantIDs := []string{"top-paying-jobs", "in-demand-skills", "top-hiring-companies"}
	entries := c.Entries()
	if len(entries) != len(wantIDs) {
		t.Fatalf("len(Entries()) = %d, want %d", len(entries), len(wantIDs))
	}
	for i, id := range wantIDs {
		if entries[i].ID != id {
			t.Errorf("entry %d id = %q, want %q", i, entries[i].ID, id)
		}
		sql := strings.ToLower(entries[i].SQL)
		if !strings.HasPrefix(sql, "select") {
			t.Errorf("entry %q is not a SELECT: %q", id, entries[i].SQL)
		}
		if strings.Contains(sql, ";") {
			t.Errorf("entry %q contains a statement separator", id)
		}
	}

	charts := 0
	for _, e := range entries {
		if e.Chart == ChartBar {
			charts++
			if e.ID != "in-demand-skills" {
				t.Errorf("unexpected bar chart on %q", e.ID)
			}
		}
	}
	if charts != 1 {
		t.Errorf("bar chart entries = %d, want exactly 1", charts)
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	c := Default()
	entries := c.Entries()
	entries[0].SQL = "DROP TABLE Job_Postings"

	if got := c.Entries()[0].SQL; got == "DROP TABLE Job_Postings" {
		t.Error("mutating Entries() result changed the catalog")
	}
}

func TestLookup(t *testing.T) {
	c := Default()

	for _, key := range []string{"top-paying-jobs", "Top 5 Highest Paying Jobs", "top 5 highest paying jobs", "  top-paying-jobs "} {
		e, err := c.Lookup(key)
		if err != nil {
			t.Errorf("Lookup(%q) error = %v", key, err)
			continue
		}
		if e.ID != "top-paying-jobs" {
			t.Errorf("Lookup(%q) = %q", key, e.ID)
		}
	}

	_, err := c.Lookup("salaries")
	if !errors.Is(err, ErrUnknownReport) {
		t.Fatalf("Lookup(unknown) error = %v, want ErrUnknownReport", err)
	}
	if !strings.Contains(err.Error(), "in-demand-skills") {
		t.Errorf("error should list available ids: %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty id", []Entry{{Label: "x", SQL: "SELECT 1"}}},
		{"empty label", []Entry{{ID: "x", SQL: "SELECT 1"}}},
		{"empty sql", []Entry{{ID: "x", Label: "X"}}},
		{"duplicate id", []Entry{{ID: "x", Label: "X", SQL: "SELECT 1"}, {ID: "x", Label: "Y", SQL: "SELECT 2"}}},
		{"duplicate label", []Entry{{ID: "x", Label: "Same", SQL: "SELECT 1"}, {ID: "y", Label: "same", SQL: "SELECT 2"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.entries...); err == nil {
				t.Error("expected error but got none")
			}
		})
	}
}

func TestWith_AppendsAfterBuiltins(t *testing.T) {
	c, err := Default().With(Entry{ID: "remote-jobs", Label: "Remote Jobs", SQL: "SELECT 1"})
	if err != nil {
		t.Fatalf("With() error = %v", err)
	}
	labels := c.Labels()
	if c.Len() != 4 || labels[3] != "Remote Jobs" {
		t.Errorf("Labels() = %v", labels)
	}
	if Default().Len() != 3 {
		t.Error("With() must not modify the receiver")
	}

	if _, err := Default().With(Entry{ID: "top-paying-jobs", Label: "Other", SQL: "SELECT 1"}); err == nil {
		t.Error("expected duplicate id error")
	}
}

func TestParseChart(t *testing.T) {
	tests := []struct {
		in      string
		want    Chart
		wantErr bool
	}{
		{"", ChartNone, false},
		{"bar", ChartBar, false},
		{" BAR ", ChartBar, false},
		{"pie", ChartNone, true},
	}
	for _, tt := range tests {
		got, err := ParseChart(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseChart(%q) = %v, %v", tt.in, got, err)
		}
	}
}
