package sources

import (
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/singleflight"
)

// sheetTable is one loaded worksheet, headers normalized for lookup.
type sheetTable struct {
	// headers is the first row, trimmed and lowercased.
	headers []string

	// rows are the data rows below the header.
	rows [][]string

	// built is the timestamp when this table was loaded.
	built time.Time

	// ttl is the time-to-live for this table.
	ttl time.Duration
}

// isExpired returns true if this table has expired based on its TTL.
func (t *sheetTable) isExpired() bool {
	if t.ttl == 0 {
		return true // No caching
	}
	return time.Since(t.built) > t.ttl
}

// column resolves a header name to its index. The configured name is tried
// first, then the known variants. Returns -1 when nothing matches.
func (t *sheetTable) column(name string, variants []string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	if want != "" {
		for i, h := range t.headers {
			if h == want {
				return i
			}
		}
	}
	for _, v := range variants {
		for i, h := range t.headers {
			if h == v {
				return i
			}
		}
	}
	return -1
}

// cell returns the trimmed value at idx, tolerating short rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// tableStore holds all loaded sheet tables keyed by file and sheet.
type tableStore struct {
	mu     sync.RWMutex
	tables map[string]*sheetTable
	sf     singleflight.Group
}

// globalTableStore is the singleton table store for all sheet sources.
var globalTableStore = &tableStore{
	tables: make(map[string]*sheetTable),
}

// readTable loads a worksheet from disk without touching the store.
func readTable(path, sheet string, ttl time.Duration) (*sheetTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	table := &sheetTable{
		built: time.Now(),
		ttl:   ttl,
	}
	if len(rows) > 0 {
		table.headers = make([]string, len(rows[0]))
		for i, h := range rows[0] {
			table.headers[i] = strings.ToLower(strings.TrimSpace(h))
		}
		table.rows = rows[1:]
	}
	return table, nil
}

// loadTable retrieves a worksheet from the store, or loads it from disk if
// it is missing or expired. Uses singleflight to prevent load stampedes when
// several records query the same sheet.
func loadTable(path, sheet string, ttl time.Duration) (*sheetTable, error) {
	key := path + "|" + sheet

	// Fast path: check if the table exists and is fresh
	globalTableStore.mu.RLock()
	table, exists := globalTableStore.tables[key]
	globalTableStore.mu.RUnlock()

	if exists && !table.isExpired() {
		return table, nil
	}

	// Slow path: load using singleflight
	result, err, _ := globalTableStore.sf.Do(key, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		globalTableStore.mu.RLock()
		table, exists := globalTableStore.tables[key]
		globalTableStore.mu.RUnlock()

		if exists && !table.isExpired() {
			return table, nil
		}

		newTable, err := readTable(path, sheet, ttl)
		if err != nil {
			return nil, err
		}

		globalTableStore.mu.Lock()
		globalTableStore.tables[key] = newTable
		globalTableStore.mu.Unlock()

		return newTable, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*sheetTable), nil
}

// InvalidateTable removes a loaded worksheet from the store, forcing the
// next query to reload it from disk.
func InvalidateTable(path, sheet string) {
	key := path + "|" + sheet
	globalTableStore.mu.Lock()
	delete(globalTableStore.tables, key)
	globalTableStore.mu.Unlock()
}
