package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avkotelnikov/bookshop/internal/cart"
	"github.com/avkotelnikov/bookshop/internal/checkout"
	"github.com/avkotelnikov/bookshop/internal/logging"
	"github.com/avkotelnikov/bookshop/internal/transport"
)

type CheckoutHandler struct {
	Coordinator *checkout.Coordinator
}

func (h *CheckoutHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Error("checkout_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.Lines) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
	}

	// Rebuild the client-held cart; AddLine enforces the per-book cap and
	// merges duplicate lines the same way the cart UI does.
	sess := cart.NewSession()
	for _, line := range req.Lines {
		sess.AddLine(line.Book, line.Quantity)
	}

	report, catalog := h.Coordinator.Checkout(ctx, sess)

	l.Info("checkout_completed", "lines", len(report.Lines), "all_applied", report.AllApplied)
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Checking out!",
		"report":  report,
		"catalog": catalog,
	})
}
