package ingest

import (
	"context"
	"encoding/json"

	"github.com/avkotelnikov/bookshop/internal/models"
	"github.com/avkotelnikov/bookshop/internal/store"
)

// ParseError means the uploaded file content could not be decoded at all;
// it is surfaced before the store is touched.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

// Parse decodes client-supplied file content into catalog records.
func Parse(data []byte) ([]models.Book, error) {
	var records []models.Book
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ParseError{Reason: "malformed upload: " + err.Error()}
	}
	// json.Unmarshal accepts the literal null without error
	if records == nil {
		return nil, &ParseError{Reason: "malformed upload: expected a list of records"}
	}
	return records, nil
}

type Ingestor struct {
	Store *store.CatalogStore
}

// Ingest parses and submits one batch. The batch is all-or-nothing: any
// invalid record rejects the whole upload with zero rows persisted, and the
// outcome list reports which records failed. On success the inserted records
// carry their assigned ids, followed by the refreshed catalog.
func (in *Ingestor) Ingest(ctx context.Context, data []byte) ([]store.RecordOutcome, []models.Book, []models.Book, error) {
	records, err := Parse(data)
	if err != nil {
		return nil, nil, nil, err
	}

	outcomes, err := in.Store.BulkInsert(ctx, records)
	if err != nil {
		return outcomes, nil, nil, err
	}

	catalog, err := in.Store.List(ctx)
	if err != nil {
		return outcomes, records, nil, err
	}
	return outcomes, records, catalog, nil
}
