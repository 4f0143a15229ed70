package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"servicelog/internal/config"
	"servicelog/internal/observability"
	"servicelog/internal/tablestore"
)

// fakeStore is an in-memory stand-in for the hosted table store. It speaks
// just enough of the table API for the services: range-paginated GET with eq
// filters, POST appends, PATCH merges into matching rows.
type fakeStore struct {
	mu     sync.Mutex
	tables map[string][]map[string]interface{}
	fail   map[string]int // table -> HTTP status to force
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables: map[string][]map[string]interface{}{},
		fail:   map[string]int{},
	}
}

// seed marshals rows through JSON into the store's raw-map representation.
func (f *fakeStore) seed(t *testing.T, table string, rows interface{}) {
	t.Helper()
	raw, err := json.Marshal(rows)
	require.NoError(t, err)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[table] = decoded
}

func (f *fakeStore) rows(table string) []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]interface{}, len(f.tables[table]))
	copy(out, f.tables[table])
	return out
}

func (f *fakeStore) failWith(table string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[table] = status
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")

	f.mu.Lock()
	defer f.mu.Unlock()

	if status := f.fail[table]; status != 0 {
		w.WriteHeader(status)
		return
	}

	switch r.Method {
	case http.MethodGet:
		matched := f.filterLocked(table, r)
		matched = applyRange(matched, r)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(matched)

	case http.MethodPost:
		var row map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.tables[table] = append(f.tables[table], row)
		w.WriteHeader(http.StatusCreated)

	case http.MethodPatch:
		var changes map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, row := range f.filterLocked(table, r) {
			for k, v := range changes {
				row[k] = v
			}
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeStore) filterLocked(table string, r *http.Request) []map[string]interface{} {
	matched := []map[string]interface{}{}
	for _, row := range f.tables[table] {
		ok := true
		for column, values := range r.URL.Query() {
			if column == "select" {
				continue
			}
			want := strings.TrimPrefix(values[0], "eq.")
			got, _ := row[column].(string)
			if got != want {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, row)
		}
	}
	return matched
}

func applyRange(rows []map[string]interface{}, r *http.Request) []map[string]interface{} {
	header := r.Header.Get("Range")
	if header == "" {
		return rows
	}
	parts := strings.SplitN(header, "-", 2)
	start, _ := strconv.Atoi(parts[0])
	end, _ := strconv.Atoi(parts[1])

	if start >= len(rows) {
		return []map[string]interface{}{}
	}
	if end >= len(rows) {
		end = len(rows) - 1
	}
	return rows[start : end+1]
}

// newTestDataService wires a DataService against a fakeStore.
func newTestDataService(t *testing.T, store *fakeStore) *DataService {
	t.Helper()
	server := httptest.NewServer(store)
	t.Cleanup(server.Close)

	cfg := &config.TableStoreConfig{APIKey: "test-key", PageSize: 100, TimeoutSeconds: 5}
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	client := tablestore.NewClientWithURL(cfg, logger, server.URL)
	return NewDataService(client, cfg, logger)
}

func testLogger() *observability.Logger {
	return observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
}
