package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avkotelnikov/bookshop/internal/models"
	"github.com/avkotelnikov/bookshop/internal/transport"
)

type CatalogStore struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *CatalogStore {
	return &CatalogStore{DB: db}
}

func validate(b *models.Book) error {
	if b.Title == "" {
		return &ValidationError{Reason: "title is required"}
	}
	if b.Price < 0 {
		return &ValidationError{Reason: "price cannot be negative"}
	}
	return nil
}

func (s *CatalogStore) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	if err := validate(b); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (s *CatalogStore) List(ctx context.Context) ([]models.Book, error) {
	var items []models.Book
	if err := s.DB.WithContext(ctx).Model(&models.Book{}).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *CatalogStore) Get(ctx context.Context, id uint) (*models.Book, error) {
	book := models.Book{}
	if err := s.DB.WithContext(ctx).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Patch merges only the fields present in req into the stored record.
func (s *CatalogStore) Patch(ctx context.Context, id uint, req transport.PatchBookRequest) (*models.Book, error) {
	var book models.Book
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if req.Title != nil {
			book.Title = *req.Title
		}
		if req.ISBN != nil {
			book.ISBN = *req.ISBN
		}
		if req.Author != nil {
			book.Author = *req.Author
		}
		if req.Category != nil {
			book.Category = *req.Category
		}
		if req.Price != nil {
			book.Price = *req.Price
		}
		if req.Stock != nil {
			book.Stock = *req.Stock
		}

		if err := validate(&book); err != nil {
			return err
		}

		return tx.Save(&book).Error
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *CatalogStore) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Book{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type RecordOutcome struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkInsert persists the whole batch or nothing. The returned outcome list
// always has one entry per submitted record, in submission order.
func (s *CatalogStore) BulkInsert(ctx context.Context, records []models.Book) ([]RecordOutcome, error) {
	outcomes := make([]RecordOutcome, len(records))
	valid := true
	for i := range records {
		outcomes[i] = RecordOutcome{Index: i, Title: records[i].Title, OK: true}
		if err := validate(&records[i]); err != nil {
			outcomes[i].OK = false
			outcomes[i].Error = err.Error()
			valid = false
		}
	}
	if !valid {
		return outcomes, &ValidationError{Reason: "batch rejected: one or more records are invalid"}
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			if err := tx.Create(&records[i]).Error; err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

type DecrementResult struct {
	Depleted  bool
	Remaining uint
}

// DecrementStock applies a conditional decrement: the stock column is only
// touched when the remaining amount stays above zero, so two concurrent
// checkouts of the same book cannot overwrite each other's write. A
// decrement that would reach zero or below removes the record entirely.
func (s *CatalogStore) DecrementStock(ctx context.Context, id uint, qty uint) (*DecrementResult, error) {
	var result DecrementResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upd := tx.Model(&models.Book{}).
			Where("id = ? AND stock > ?", id, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 1 {
			var book models.Book
			if err := tx.First(&book, id).Error; err != nil {
				return err
			}
			result.Remaining = book.Stock
			return nil
		}

		// Either the row is gone or the decrement depletes it.
		del := tx.Delete(&models.Book{}, "id = ? AND stock <= ?", id, qty)
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			return ErrNotFound
		}
		result.Depleted = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
