package models

type Book struct {
	ID       uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title    string  `gorm:"not null"                 json:"title"`
	ISBN     string  `json:"ISBN"`
	Author   string  `json:"author"`
	Category string  `json:"category"`
	Price    float64 `gorm:"check:price >= 0"         json:"price"`
	Stock    uint    `json:"stock"`
}
