package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avkotelnikov/bookshop/internal/ingest"
	"github.com/avkotelnikov/bookshop/internal/logging"
	"github.com/avkotelnikov/bookshop/internal/mykafka"
	"github.com/avkotelnikov/bookshop/internal/service/search"
	"github.com/avkotelnikov/bookshop/internal/store"
)

type IngestHandler struct {
	Ingestor *ingest.Ingestor
	Producer *mykafka.Producer
	Indexer  *search.Indexer
}

func (h *IngestHandler) BulkInsert(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "ingest.bulk")

	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		l.Error("bulk_insert_failed", "status", 400, "reason", "cannot read body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read body")
	}

	outcomes, inserted, catalog, err := h.Ingestor.Ingest(ctx, data)
	if err != nil {
		var perr *ingest.ParseError
		var verr *store.ValidationError
		switch {
		case errors.As(err, &perr):
			l.Warn("bulk_insert_rejected", "status", 400, "reason", "parse error", "error", err)
			return c.JSON(http.StatusBadRequest, map[string]any{"message": perr.Error()})
		case errors.As(err, &verr):
			l.Warn("bulk_insert_rejected", "status", 400, "reason", "validation", "error", err)
			return c.JSON(http.StatusBadRequest, map[string]any{
				"message": verr.Error(),
				"records": outcomes,
			})
		default:
			l.Error("bulk_insert_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if h.Indexer != nil {
		for _, book := range inserted {
			if ierr := h.Indexer.IndexBook(ctx, book); ierr != nil {
				l.Error("es index error", "book_id", book.ID, "error", ierr)
			}
		}
	}

	if h.Producer != nil {
		if perr := h.Producer.PublishEvent(ctx, "catalog_events", "catalog", map[string]any{
			"type":  "books_bulk_inserted",
			"count": len(outcomes),
		}); perr != nil {
			l.Error("kafka publish error", "error", perr)
		}
	}

	l.Info("bulk_insert_success", "count", len(outcomes))
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Books added successfully",
		"records": outcomes,
		"catalog": catalog,
	})
}
