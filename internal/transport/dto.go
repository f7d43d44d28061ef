package transport

import "github.com/avkotelnikov/bookshop/internal/models"

type CreateBookRequest struct {
	Title    string  `json:"title"`
	ISBN     string  `json:"ISBN"`
	Author   string  `json:"author"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    uint    `json:"stock"`
}

type PatchBookRequest struct {
	Title    *string  `json:"title"`
	ISBN     *string  `json:"ISBN"`
	Author   *string  `json:"author"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
	Stock    *uint    `json:"stock"`
}

type CheckoutLine struct {
	Book     models.Book `json:"book"`
	Quantity uint        `json:"quantity"`
}

type CheckoutRequest struct {
	Lines []CheckoutLine `json:"lines"`
}
