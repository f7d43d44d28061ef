package cart

import (
	"math"

	"github.com/avkotelnikov/bookshop/internal/models"
)

// MaxPerBook caps how many copies of one book a single cart may hold.
const MaxPerBook = 5

type Line struct {
	Book     models.Book `json:"book"`
	Quantity uint        `json:"quantity"`
}

// Session is the client-held cart: an ordered set of lines keyed by book id.
// It is never persisted; each Line carries a snapshot of the book taken at
// selection time, not a live reference.
type Session struct {
	lines      []Line
	selected   *models.Book
	pendingQty uint
}

func NewSession() *Session {
	return &Session{pendingQty: 1}
}

// Select marks a book as the pending selection and resets the quantity
// selector back to 1.
func (s *Session) Select(b models.Book) {
	copied := b
	s.selected = &copied
	s.pendingQty = 1
}

func (s *Session) Selected() *models.Book {
	return s.selected
}

func (s *Session) PendingQuantity() uint {
	return s.pendingQty
}

func (s *Session) SetPendingQuantity(q uint) {
	s.pendingQty = clamp(q)
}

// AddLine adds qty copies of b, merging into an existing line for the same
// book id. Quantities are clamped to [1, MaxPerBook] and a merged line never
// exceeds MaxPerBook.
func (s *Session) AddLine(b models.Book, qty uint) {
	qty = clamp(qty)
	for i := range s.lines {
		if s.lines[i].Book.ID == b.ID {
			q := s.lines[i].Quantity + qty
			if q > MaxPerBook {
				q = MaxPerBook
			}
			s.lines[i].Quantity = q
			return
		}
	}
	s.lines = append(s.lines, Line{Book: b, Quantity: qty})
}

// Lines returns a snapshot copy in insertion order.
func (s *Session) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Session) Len() int {
	return len(s.lines)
}

// Total is computed fresh on every call and rounded to two decimals.
func (s *Session) Total() float64 {
	var total float64
	for _, l := range s.lines {
		total += l.Book.Price * float64(l.Quantity)
	}
	return math.Round(total*100) / 100
}

func (s *Session) Clear() {
	s.lines = nil
}

func clamp(q uint) uint {
	if q < 1 {
		return 1
	}
	if q > MaxPerBook {
		return MaxPerBook
	}
	return q
}
