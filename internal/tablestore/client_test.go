package tablestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicelog/internal/config"
	"servicelog/internal/observability"
	contextutils "servicelog/internal/utils"
)

type testRow struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.TableStoreConfig{APIKey: "test-key", TimeoutSeconds: 5}
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	return NewClientWithURL(cfg, logger, server.URL), server
}

// parseRange extracts the inclusive [start, end] window from the Range header.
func parseRange(t *testing.T, r *http.Request) (int, int) {
	t.Helper()
	header := r.Header.Get("Range")
	require.NotEmpty(t, header, "missing Range header")
	parts := strings.SplitN(header, "-", 2)
	require.Len(t, parts, 2)
	start, err := strconv.Atoi(parts[0])
	require.NoError(t, err)
	end, err := strconv.Atoi(parts[1])
	require.NoError(t, err)
	return start, end
}

// tableHandler serves rows [0, total) of a fake table, honoring Range headers.
func tableHandler(t *testing.T, total int, requests *[]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests = append(*requests, r.Header.Get("Range"))

		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "items", r.Header.Get("Range-Unit"))

		start, end := parseRange(t, r)
		rows := []testRow{}
		for i := start; i <= end && i < total; i++ {
			rows = append(rows, testRow{ID: i, Name: fmt.Sprintf("row-%d", i)})
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(rows))
	})
}

func TestFetchAll_SinglePartialPage(t *testing.T) {
	var requests []string
	client, _ := newTestClient(t, tableHandler(t, 7, &requests))

	rows, err := FetchAll[testRow](context.Background(), client, "Service_Log", "*", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 7)
	assert.Equal(t, []string{"0-9"}, requests, "a short first page ends the fetch")
	assert.Equal(t, testRow{ID: 6, Name: "row-6"}, rows[6])
}

func TestFetchAll_MultiplePages(t *testing.T) {
	var requests []string
	client, _ := newTestClient(t, tableHandler(t, 25, &requests))

	rows, err := FetchAll[testRow](context.Background(), client, "Service_Log", "*", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 25)
	assert.Equal(t, []string{"0-9", "10-19", "20-29"}, requests)

	// Rows arrive in range order across page boundaries.
	for i, row := range rows {
		assert.Equal(t, i, row.ID)
	}
}

func TestFetchAll_ExactMultipleIssuesExtraRequest(t *testing.T) {
	var requests []string
	client, _ := newTestClient(t, tableHandler(t, 20, &requests))

	rows, err := FetchAll[testRow](context.Background(), client, "Service_Log", "*", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 20)
	// Two full pages cannot prove the table is done; the empty third page does.
	assert.Equal(t, []string{"0-9", "10-19", "20-29"}, requests)
}

func TestFetchAll_EmptyTable(t *testing.T) {
	var requests []string
	client, _ := newTestClient(t, tableHandler(t, 0, &requests))

	rows, err := FetchAll[testRow](context.Background(), client, "Service_Log", "*", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, []string{"0-9"}, requests)
}

func TestFetchAll_ErrorAbortsWithoutPartialResult(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			rows := make([]testRow, 10)
			for i := range rows {
				rows[i] = testRow{ID: i}
			}
			require.NoError(t, json.NewEncoder(w).Encode(rows))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"boom"}`))
	}))

	rows, err := FetchAll[testRow](context.Background(), client, "Service_Log", "*", 10)
	require.Error(t, err)
	assert.Nil(t, rows, "a mid-fetch error must not surface partial rows")
	assert.Equal(t, 2, calls, "no retries after a failed page")
	assert.Equal(t, contextutils.ErrorCodeStoreQuery, contextutils.GetErrorCode(err))
}

func TestFetchAll_InvalidPageSize(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	_, err := FetchAll[testRow](context.Background(), client, "Service_Log", "*", 0)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeInvalidInput, contextutils.GetErrorCode(err))
}

func TestQuery_SelectAndEq(t *testing.T) {
	var gotURL string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		_, _ = w.Write([]byte(`[{"id":1,"name":"x"}]`))
	}))

	var rows []testRow
	err := client.Table("Instruments").
		Select("id,name").
		Eq("customer_name", "Acme Labs").
		Execute(context.Background(), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Contains(t, gotURL, "/rest/v1/Instruments")
	assert.Contains(t, gotURL, "select=id%2Cname")
	assert.Contains(t, gotURL, "customer_name=eq.Acme+Labs")
}

func TestQuery_DecodeFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))

	var rows []testRow
	err := client.Table("Service_Log").Execute(context.Background(), &rows)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeStoreResponse, contextutils.GetErrorCode(err))
}

func TestClient_ConnectionError(t *testing.T) {
	cfg := &config.TableStoreConfig{APIKey: "k", TimeoutSeconds: 1}
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	client := NewClientWithURL(cfg, logger, "http://127.0.0.1:1")

	var rows []testRow
	err := client.Table("Service_Log").Execute(context.Background(), &rows)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeStoreConnection, contextutils.GetErrorCode(err))
	assert.True(t, contextutils.IsRetryable(err))
}

func TestClient_Insert(t *testing.T) {
	var gotMethod, gotBody, gotPrefer string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPrefer = r.Header.Get("Prefer")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
	}))

	err := client.Insert(context.Background(), "Service_Log_Pending", testRow{ID: 9, Name: "new"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "return=minimal", gotPrefer)
	assert.JSONEq(t, `{"id":9,"name":"new"}`, gotBody)
}

func TestClient_Update(t *testing.T) {
	var gotMethod, gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.Update(context.Background(), "Service_Log",
		map[string]string{"call_id": "abc-123"},
		map[string]string{"status": "Solved"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "call_id=eq.abc-123", gotQuery)
}

func TestClient_UpdateWithoutFiltersRefused(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	err := client.Update(context.Background(), "Service_Log", nil, map[string]string{"status": "Solved"})
	require.Error(t, err)

	var appErr *contextutils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, contextutils.ErrorCodeInvalidInput, appErr.Code)
}
