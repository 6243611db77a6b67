// model/book.go
package model

import "time"

type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn"`
	Quantity  int64     `json:"quantity"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}
