package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avkotelnikov/bookshop/internal/handlers"
)

type Deps struct {
	BookHandler     *handlers.BookHandler
	IngestHandler   *handlers.IngestHandler
	CheckoutHandler *handlers.CheckoutHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/test", func(c echo.Context) error { return c.String(http.StatusOK, "Server is working!") })

	books := e.Group("/books")

	books.GET("", d.BookHandler.GetBooks)
	books.POST("", d.BookHandler.CreateBook)
	books.POST("/bulk", d.IngestHandler.BulkInsert)
	books.GET("/search", d.SearchHandler.Search)
	books.GET("/:id", d.BookHandler.GetBook)
	books.PUT("/:id", d.BookHandler.UpdateBook)
	books.DELETE("/:id", d.BookHandler.DeleteBook)

	e.POST("/checkout", d.CheckoutHandler.Checkout)
}
