package cmd

import (
	"context"
	"fmt"

	"github.com/lepinkainen/bibly/internal/catalog"
)

// GenreCmd groups the genre subcommands
type GenreCmd struct {
	List   GenreListCmd   `cmd:"" help:"List genres by name"`
	Add    GenreAddCmd    `cmd:"" help:"Add a genre, or show the existing one with that name"`
	Delete GenreDeleteCmd `cmd:"" help:"Delete a genre, moving its books to the fallback genre"`
}

// GenreListCmd lists genres
type GenreListCmd struct{}

// GenreAddCmd adds a genre
type GenreAddCmd struct {
	Name string `arg:"" help:"Genre name"`
}

// GenreDeleteCmd deletes a genre
type GenreDeleteCmd struct {
	ID int64 `arg:"" help:"Genre id"`
}

func (c *GenreListCmd) Run(app *App) error {
	svc, err := app.Catalog()
	if err != nil {
		return err
	}
	genres, err := svc.ListGenres(context.Background())
	if err != nil {
		return err
	}
	return app.print(genres)
}

func (c *GenreAddCmd) Run(app *App) error {
	svc, err := app.Catalog()
	if err != nil {
		return err
	}
	g, err := svc.AddGenre(context.Background(), c.Name)
	if err != nil {
		return err
	}
	return app.print(g)
}

func (c *GenreDeleteCmd) Run(app *App) error {
	svc, err := app.Catalog()
	if err != nil {
		return err
	}
	if err := svc.DeleteGenre(context.Background(), c.ID); err != nil {
		return err
	}
	return app.print(message{Message: fmt.Sprintf("deleted genre %d", c.ID)})
}

// BookCmd groups the book subcommands
type BookCmd struct {
	List   BookListCmd   `cmd:"" help:"List books, optionally only one genre"`
	Add    BookAddCmd    `cmd:"" help:"Add a book"`
	Update BookUpdateCmd `cmd:"" help:"Replace every field of a book"`
	Delete BookDeleteCmd `cmd:"" help:"Delete a book"`
	Count  BookCountCmd  `cmd:"" help:"Count the books in a genre"`
	Import BookImportCmd `cmd:"" help:"Import books from a CSV file"`
	Export BookExportCmd `cmd:"" help:"Export every book to a CSV, JSON or YAML file"`
}

// BookListCmd lists books
type BookListCmd struct {
	Genre *int64 `help:"Only list books in this genre id"`
}

// BookFields are the optional columns shared by add and update.
type BookFields struct {
	ISBN      *string `help:"ISBN"`
	Author    *string `help:"Author"`
	Publisher *string `help:"Publisher"`
	Price     *int64  `help:"Price"`
	CCode     *string `name:"c-code" help:"Classification code (C code)"`
	Genre     *int64  `help:"Genre id"`
}

// BookAddCmd adds a book
type BookAddCmd struct {
	Title string `arg:"" help:"Title"`
	BookFields `embed:""`
	Read bool `help:"Mark the book as read"`
}

// BookUpdateCmd updates a book
type BookUpdateCmd struct {
	ID    int64  `arg:"" help:"Book id"`
	Title string `arg:"" help:"Title"`
	BookFields `embed:""`
	Read bool `help:"Mark the book as read"`
}

// BookDeleteCmd deletes a book
type BookDeleteCmd struct {
	ID int64 `arg:"" help:"Book id"`
}

// BookCountCmd counts books in a genre
type BookCountCmd struct {
	Genre int64 `arg:"" help:"Genre id"`
}

func readFlag(read bool) int64 {
	if read {
		return 1
	}
	return 0
}

func (c *BookListCmd) Run(app *App) error {
	svc, err := app.Catalog()
	if err != nil {
		return err
	}
	var books []catalog.Book
	if c.Genre != nil {
		books, err = svc.ListBooksByGenre(context.Background(), *c.Genre)
	} else {
		books, err = svc.ListBooks(context.Background())
	}
	if err != nil {
		return err
	}
	return app.print(books)
}

func (c *BookAddCmd) newBook() catalog.NewBook {
	read := readFlag(c.Read)
	return catalog.NewBook{
		Title:              c.Title,
		GenreID:            c.Genre,
		ISBN:               c.ISBN,
		Author:             c.Author,
		Publisher:          c.Publisher,
		Price:              c.Price,
		ClassificationCode: c.CCode,
		IsRead:             &read,
	}
}

func (c *BookAddCmd) Run(app *App) error {
	svc, err := app.Catalog()
	if err != nil {
		return err
	}
	b, err := svc.AddBook(context.Background(), c.newBook())
	if err != nil {
		return err
	}
	return app.print(b)
}

func (c *BookUpdateCmd) Run(app *App) error {
	svc, err := app.Catalog()
	if err != nil {
		return err
	}
	b, err := svc.EditBook(context.Background(), catalog.UpdateBook{
		ID:                 c.ID,
		ISBN:               c.ISBN,
		Title:              c.Title,
		Author:             c.Author,
		Publisher:          c.Publisher,
		Price:              c.Price,
		ClassificationCode: c.CCode,
		IsRead:             readFlag(c.Read),
		GenreID:            c.Genre,
	})
	if err != nil {
		return err
	}
	return app.print(b)
}

func (c *BookDeleteCmd) Run(app *App) error {
	svc, err := app.Catalog()
	if err != nil {
		return err
	}
	if err := svc.DeleteBook(context.Background(), c.ID); err != nil {
		return err
	}
	return app.print(message{Message: fmt.Sprintf("deleted book %d", c.ID)})
}

func (c *BookCountCmd) Run(app *App) error {
	svc, err := app.Catalog()
	if err != nil {
		return err
	}
	n, err := svc.CountBooksInGenre(context.Background(), c.Genre)
	if err != nil {
		return err
	}
	return app.print(genreCount{GenreID: c.Genre, Count: n})
}
