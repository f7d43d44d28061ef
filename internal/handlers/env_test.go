package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avkotelnikov/bookshop/internal/checkout"
	"github.com/avkotelnikov/bookshop/internal/handlers"
	"github.com/avkotelnikov/bookshop/internal/ingest"
	"github.com/avkotelnikov/bookshop/internal/models"
	"github.com/avkotelnikov/bookshop/internal/store"
	httpserver "github.com/avkotelnikov/bookshop/internal/transport/http"
)

type testEnv struct {
	T     *testing.T
	E     *echo.Echo
	B     *handlers.BookHandler
	I     *handlers.IngestHandler
	C     *handlers.CheckoutHandler
	Store *store.CatalogStore
	DB    *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Book{}))

	s := store.New(db)

	env := &testEnv{
		T:     t,
		E:     echo.New(),
		Store: s,
		DB:    db,
	}

	env.B = &handlers.BookHandler{Store: s}
	env.I = &handlers.IngestHandler{Ingestor: &ingest.Ingestor{Store: s}}
	env.C = &handlers.CheckoutHandler{Coordinator: &checkout.Coordinator{Store: s}}

	httpserver.Register(env.E, &httpserver.Deps{
		BookHandler:     env.B,
		IngestHandler:   env.I,
		CheckoutHandler: env.C,
		SearchHandler:   &handlers.SearchHandler{},
	})

	return env
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// serve routes the request through the registered router instead of calling
// a handler directly.
func (env *testEnv) serve(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) createBook(b models.Book) *models.Book {
	env.T.Helper()
	stored, err := env.Store.Create(context.Background(), &b)
	require.NoError(env.T, err)
	return stored
}
