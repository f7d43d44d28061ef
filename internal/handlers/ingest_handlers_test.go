package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/avkotelnikov/bookshop/internal/service/search"
	"github.com/avkotelnikov/bookshop/internal/store"
)

func doRawRequest(env *testEnv, method, path string, body []byte) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func TestBulkInsert(t *testing.T) {
	env := newTestEnv(t)

	payload := []byte(`[
		{"title":"one","ISBN":"978-1","author":"a","category":"c","price":9.99,"stock":4},
		{"title":"two","price":2,"stock":1}
	]`)

	rec, c := doRawRequest(env, http.MethodPost, "/books/bulk", payload)
	require.NoError(t, env.I.BulkInsert(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message string                `json:"message"`
		Records []store.RecordOutcome `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Books added successfully", resp.Message)
	require.Len(t, resp.Records, 2)

	books, err := env.Store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)
}

func TestBulkInsertRejectsWholeBatch(t *testing.T) {
	env := newTestEnv(t)

	payload := []byte(`[
		{"title":"good","price":1,"stock":1},
		{"price":2,"stock":2}
	]`)

	rec, c := doRawRequest(env, http.MethodPost, "/books/bulk", payload)
	require.NoError(t, env.I.BulkInsert(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message string                `json:"message"`
		Records []store.RecordOutcome `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 2)
	require.True(t, resp.Records[0].OK)
	require.False(t, resp.Records[1].OK)

	books, err := env.Store.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, books)
}

func TestBulkInsertMalformed(t *testing.T) {
	env := newTestEnv(t)

	for _, payload := range []string{"{not a list", "null"} {
		rec, c := doRawRequest(env, http.MethodPost, "/books/bulk", []byte(payload))
		require.NoError(t, env.I.BulkInsert(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}

	books, err := env.Store.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, books)
}

func TestBulkInsertIndexesRecords(t *testing.T) {
	env := newTestEnv(t)

	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	env.I.Indexer = &search.Indexer{ES: esClient, Index: "books"}

	payload := []byte(`[
		{"title":"one","price":1,"stock":1},
		{"title":"two","price":2,"stock":2}
	]`)

	rec, c := doRawRequest(env, http.MethodPost, "/books/bulk", payload)
	require.NoError(t, env.I.BulkInsert(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Equal(t, []string{
		"PUT /books/_doc/1",
		"PUT /books/_doc/2",
	}, calls)
}
