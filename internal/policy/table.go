package policy

import (
	"fmt"
	"sort"
	"strings"
)

// Table is a curated list of module or symbol names kept in ascending
// case-insensitive order so membership is a binary search.
type Table struct {
	name    string
	entries []string
	lower   []string
}

func newTable(name string, entries ...string) *Table {
	t := &Table{name: name, entries: entries, lower: make([]string, len(entries))}
	for i, e := range entries {
		t.lower[i] = strings.ToLower(e)
	}
	return t
}

// Name identifies the table in panics and test output
func (t *Table) Name() string {
	return t.name
}

// Entries returns the names as curated
func (t *Table) Entries() []string {
	return append([]string(nil), t.entries...)
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Contains reports whether name is listed, ignoring case
func (t *Table) Contains(name string) bool {
	key := strings.ToLower(name)
	i := sort.SearchStrings(t.lower, key)
	return i < len(t.lower) && t.lower[i] == key
}

// Validate returns an error naming the first pair of entries that are out of
// order or duplicated.
func (t *Table) Validate() error {
	if len(t.lower) == 0 {
		return fmt.Errorf("policy table %s is empty", t.name)
	}
	for i := 1; i < len(t.lower); i++ {
		if t.lower[i-1] >= t.lower[i] {
			return fmt.Errorf("policy table %s is not sorted: %q must come after %q", t.name, t.entries[i-1], t.entries[i])
		}
	}
	return nil
}

// mustBeSorted panics when any table fails Validate. Binary search over an
// unsorted table would silently misclassify.
func mustBeSorted(tables ...*Table) {
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			panic(err)
		}
	}
}

// Tables returns every curated table in the order the rule chain consults them
func Tables() []*Table {
	return []*Table{
		coreOS, win32Legacy, systemOS, gameOSOnly, pcOnly, pcVendor,
		legacyDXSDKDebug, legacyDXSDK, gdk, devOnlyGDK,
		d3dLegacy, d3dStock, d3dXboxOne, d3dScarlett, legacyERA,
		gameOSAPIs, additionalGameOSAPIs,
	}
}
