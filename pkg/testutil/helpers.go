// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/pkg/output"
)

// Fixture returns the embedded demo portfolio or fails the test.
func Fixture(tb testing.TB) *ledger.Ledger {
	tb.Helper()
	l, err := ledger.Fixture()
	if err != nil {
		tb.Fatalf("ledger.Fixture() error = %v", err)
	}
	return l
}

// FindTable finds a table by title in the tables slice.
// Returns a pointer to the table if found, nil otherwise.
func FindTable(tables []output.Table, title string) *output.Table {
	for i := range tables {
		if tables[i].Title == title {
			return &tables[i]
		}
	}
	return nil
}

// FindRow returns the first row of t whose first cell is key, or nil.
func FindRow(t *output.Table, key string) []string {
	if t == nil {
		return nil
	}
	for _, row := range t.Rows {
		if len(row) > 0 && row[0] == key {
			return row
		}
	}
	return nil
}
