// Package catalog stores books and genres and keeps every book's genre
// reference valid across genre deletion.
package catalog

// Genre is a named shelf books can be filed under.
type Genre struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Book is a stored catalog entry.
type Book struct {
	ID                 int64   `json:"id" yaml:"id"`
	ISBN               *string `json:"isbn" yaml:"isbn"`
	Title              string  `json:"title" yaml:"title"`
	Author             *string `json:"author" yaml:"author"`
	Publisher          *string `json:"publisher" yaml:"publisher"`
	Price              *int64  `json:"price" yaml:"price"`
	ClassificationCode *string `json:"c_code" yaml:"c_code"`
	IsRead             int64   `json:"is_read" yaml:"is_read"`
	GenreID            *int64  `json:"genre_id" yaml:"genre_id"`
}

// NewBook is the input for creating a book. An omitted IsRead stores 0.
type NewBook struct {
	Title              string  `json:"title" validate:"notblank"`
	GenreID            *int64  `json:"genre_id,omitempty"`
	ISBN               *string `json:"isbn,omitempty"`
	Author             *string `json:"author,omitempty"`
	Publisher          *string `json:"publisher,omitempty"`
	Price              *int64  `json:"price,omitempty"`
	ClassificationCode *string `json:"c_code,omitempty"`
	IsRead             *int64  `json:"is_read,omitempty" validate:"omitempty,oneof=0 1"`
}

// UpdateBook replaces every column of the book with ID.
type UpdateBook struct {
	ID                 int64   `json:"id"`
	ISBN               *string `json:"isbn,omitempty"`
	Title              string  `json:"title" validate:"notblank"`
	Author             *string `json:"author,omitempty"`
	Publisher          *string `json:"publisher,omitempty"`
	Price              *int64  `json:"price,omitempty"`
	ClassificationCode *string `json:"c_code,omitempty"`
	IsRead             int64   `json:"is_read" validate:"oneof=0 1"`
	GenreID            *int64  `json:"genre_id,omitempty"`
}

// DefaultFallbackGenre receives the books of a deleted genre.
const DefaultFallbackGenre = "未分類"
