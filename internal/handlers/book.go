package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avkotelnikov/bookshop/internal/logging"
	"github.com/avkotelnikov/bookshop/internal/models"
	"github.com/avkotelnikov/bookshop/internal/mykafka"
	"github.com/avkotelnikov/bookshop/internal/service/search"
	"github.com/avkotelnikov/bookshop/internal/store"
	"github.com/avkotelnikov/bookshop/internal/transport"
)

type BookHandler struct {
	Store    *store.CatalogStore
	Producer *mykafka.Producer
	Indexer  *search.Indexer
}

func storeHTTPError(err error) *echo.HTTPError {
	var verr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *BookHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "catalog_events", "catalog", event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *BookHandler) index(c echo.Context, book models.Book) {
	if h.Indexer == nil {
		return
	}
	if err := h.Indexer.IndexBook(c.Request().Context(), book); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index error", "book_id", book.ID, "error", err)
	}
}

func (h *BookHandler) unindex(c echo.Context, id uint) {
	if h.Indexer == nil {
		return
	}
	if err := h.Indexer.DeleteBook(c.Request().Context(), id); err != nil {
		logging.FromContext(c.Request().Context()).Error("es delete error", "book_id", id, "error", err)
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not a positive integer")
	}
	return uint(id), nil
}

func (h *BookHandler) CreateBook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "book.create")

	var req transport.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		l.Error("create_book_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	book := models.Book{
		Title:    req.Title,
		ISBN:     req.ISBN,
		Author:   req.Author,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
	}

	stored, err := h.Store.Create(ctx, &book)
	if err != nil {
		l.Error("create_book_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "book_created",
		"bookID": stored.ID,
		"title":  stored.Title,
	})
	h.index(c, *stored)

	l.Info("create_book_success", "book_id", stored.ID)
	return c.JSON(http.StatusCreated, stored)
}

func (h *BookHandler) GetBooks(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "book.list")

	books, err := h.Store.List(ctx)
	if err != nil {
		l.Error("list_books_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, books)
}

func (h *BookHandler) GetBook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "book.get")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	book, err := h.Store.Get(ctx, id)
	if err != nil {
		l.Warn("get_book_failed", "book_id", id, "error", err)
		return storeHTTPError(err)
	}

	return c.JSON(http.StatusOK, book)
}

func (h *BookHandler) UpdateBook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "book.update")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req transport.PatchBookRequest
	if err := c.Bind(&req); err != nil {
		l.Error("update_book_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	book, err := h.Store.Patch(ctx, id, req)
	if err != nil {
		l.Warn("update_book_failed", "book_id", id, "error", err)
		return storeHTTPError(err)
	}

	h.publish(c, map[string]any{
		"type":   "book_updated",
		"bookID": book.ID,
		"title":  book.Title,
	})
	h.index(c, *book)

	l.Info("update_book_success", "book_id", book.ID)
	return c.JSON(http.StatusOK, book)
}

func (h *BookHandler) DeleteBook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "book.delete")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Store.Delete(ctx, id); err != nil {
		l.Warn("delete_book_failed", "book_id", id, "error", err)
		return storeHTTPError(err)
	}

	h.publish(c, map[string]any{
		"type":   "book_deleted",
		"bookID": id,
	})
	h.unindex(c, id)

	l.Info("delete_book_success", "book_id", id)
	return c.JSON(http.StatusOK, map[string]string{"message": "Book deleted successfully"})
}
