package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/avkotelnikov/bookshop/internal/models"
)

// Indexer keeps the search index in step with catalog mutations.
type Indexer struct {
	ES    *elasticsearch.Client
	Index string
}

func (ix *Indexer) IndexBook(ctx context.Context, b models.Book) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("index: marshal book %d: %w", b.ID, err)
	}

	res, err := ix.ES.Index(
		ix.Index,
		bytes.NewReader(doc),
		ix.ES.Index.WithDocumentID(strconv.FormatUint(uint64(b.ID), 10)),
		ix.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index book %d: %w", b.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index book %d: %s", b.ID, res.Status())
	}
	return nil
}

func (ix *Indexer) DeleteBook(ctx context.Context, id uint) error {
	res, err := ix.ES.Delete(
		ix.Index,
		strconv.FormatUint(uint64(id), 10),
		ix.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete book %d from index: %w", id, err)
	}
	defer res.Body.Close()

	// 404 is fine here, a depleted book may never have been indexed.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete book %d from index: %s", id, res.Status())
	}
	return nil
}
