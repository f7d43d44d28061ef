package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/avkotelnikov/bookshop/internal/cart"
	"github.com/avkotelnikov/bookshop/internal/logging"
	"github.com/avkotelnikov/bookshop/internal/models"
	"github.com/avkotelnikov/bookshop/internal/mykafka"
	"github.com/avkotelnikov/bookshop/internal/service/search"
	"github.com/avkotelnikov/bookshop/internal/store"
)

type Outcome string

const (
	OutcomeUpdated  Outcome = "updated"
	OutcomeDepleted Outcome = "depleted"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
)

type LineResult struct {
	BookID    uint    `json:"book_id"`
	Title     string  `json:"title"`
	Quantity  uint    `json:"quantity"`
	Outcome   Outcome `json:"outcome"`
	Remaining uint    `json:"remaining_stock,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type Report struct {
	Lines      []LineResult `json:"lines"`
	Total      float64      `json:"total"`
	AllApplied bool         `json:"all_applied"`
}

type Coordinator struct {
	Store    *store.CatalogStore
	Producer *mykafka.Producer
	Indexer  *search.Indexer
}

// Checkout reconciles the cart against the catalog, one line at a time in
// insertion order. A line that cannot be applied is recorded in the report
// and never aborts the remaining lines; there is no transaction spanning the
// batch. The cart is cleared unconditionally once every line was attempted,
// and the fresh catalog list is returned alongside the report.
func (co *Coordinator) Checkout(ctx context.Context, sess *cart.Session) (*Report, []models.Book) {
	l := logging.FromContext(ctx).With("component", "checkout")

	lines := sess.Lines()
	report := &Report{
		Lines:      make([]LineResult, 0, len(lines)),
		Total:      sess.Total(),
		AllApplied: true,
	}

	for _, line := range lines {
		result := LineResult{
			BookID:   line.Book.ID,
			Title:    line.Book.Title,
			Quantity: line.Quantity,
		}

		dec, err := co.Store.DecrementStock(ctx, line.Book.ID, line.Quantity)
		switch {
		case errors.Is(err, store.ErrNotFound):
			result.Outcome = OutcomeNotFound
			result.Error = err.Error()
			report.AllApplied = false
			l.Warn("checkout_line_skipped", "book_id", line.Book.ID, "quantity", line.Quantity, "error", err)
			co.unindex(ctx, line.Book.ID)
		case err != nil:
			result.Outcome = OutcomeFailed
			result.Error = err.Error()
			report.AllApplied = false
			l.Error("checkout_line_failed", "book_id", line.Book.ID, "quantity", line.Quantity, "error", err)
		case dec.Depleted:
			result.Outcome = OutcomeDepleted
			l.Info("checkout_line_depleted", "book_id", line.Book.ID, "quantity", line.Quantity)
			co.unindex(ctx, line.Book.ID)
		default:
			result.Outcome = OutcomeUpdated
			result.Remaining = dec.Remaining
			l.Info("checkout_line_applied", "book_id", line.Book.ID, "quantity", line.Quantity, "remaining", dec.Remaining)
			co.reindex(ctx, line.Book.ID)
		}

		report.Lines = append(report.Lines, result)
	}

	sess.Clear()
	co.publish(ctx, report)

	catalog, err := co.Store.List(ctx)
	if err != nil {
		l.Error("catalog_refresh_failed", "error", err)
		catalog = nil
	}

	return report, catalog
}

// reindex refreshes the search document for a book whose stock changed.
func (co *Coordinator) reindex(ctx context.Context, id uint) {
	if co.Indexer == nil {
		return
	}
	book, err := co.Store.Get(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Error("es index error", "book_id", id, "error", err)
		return
	}
	if err := co.Indexer.IndexBook(ctx, *book); err != nil {
		logging.FromContext(ctx).Error("es index error", "book_id", id, "error", err)
	}
}

func (co *Coordinator) unindex(ctx context.Context, id uint) {
	if co.Indexer == nil {
		return
	}
	if err := co.Indexer.DeleteBook(ctx, id); err != nil {
		logging.FromContext(ctx).Error("es delete error", "book_id", id, "error", err)
	}
}

func (co *Coordinator) publish(ctx context.Context, report *Report) {
	if co.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	event := map[string]any{
		"type":        "checkout_completed",
		"lines":       len(report.Lines),
		"total":       report.Total,
		"all_applied": report.AllApplied,
	}
	if err := co.Producer.PublishEvent(ctx, "checkout_events", "checkout", event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}
