package cmd

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lepinkainen/bibly/internal/catalog"
	"github.com/lepinkainen/bibly/internal/csvutil"
	"github.com/lepinkainen/bibly/internal/fileutil"
)

// csvColumns is the column order of a CSV export. Imports match columns by
// header name, so any order works there.
var csvColumns = []string{"title", "isbn", "author", "publisher", "price", "c_code", "is_read", "genre"}

// BookImportCmd imports books from a CSV file
type BookImportCmd struct {
	File        string `arg:"" type:"existingfile" help:"CSV file with a header row; only the title column is required"`
	SkipInvalid bool   `help:"Skip rows that fail to parse instead of aborting"`
}

// BookExportCmd exports every book to a file
type BookExportCmd struct {
	Path      string `arg:"" help:"Output file"`
	As        string `enum:"auto,csv,json,yaml" default:"auto" help:"File format (auto, csv, json, yaml); auto picks by extension"`
	Overwrite bool   `help:"Replace an existing file"`
}

func (c *BookImportCmd) Run(app *App) error {
	rows, err := csvutil.ProcessCSV(c.File, parseImportRow, csvutil.ProcessorOptions{
		Required:    []string{"title"},
		SkipInvalid: c.SkipInvalid,
	})
	if err != nil {
		return err
	}

	svc, err := app.Catalog()
	if err != nil {
		return err
	}
	books, err := svc.ImportBooks(context.Background(), rows)
	if err != nil {
		return err
	}
	return app.print(message{Message: fmt.Sprintf("imported %d books from %s", len(books), c.File)})
}

func parseImportRow(r csvutil.Row) (catalog.ImportRow, error) {
	nb := catalog.NewBook{
		Title:              r.Get("title"),
		ISBN:               optionalColumn(r, "isbn"),
		Author:             optionalColumn(r, "author"),
		Publisher:          optionalColumn(r, "publisher"),
		ClassificationCode: optionalColumn(r, "c_code"),
	}
	if nb.Title == "" {
		return catalog.ImportRow{}, fmt.Errorf("title is empty")
	}
	if v := r.Get("price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return catalog.ImportRow{}, fmt.Errorf("price %q is not a whole number", v)
		}
		nb.Price = &price
	}
	if v := r.Get("is_read"); v != "" {
		read, err := parseRead(v)
		if err != nil {
			return catalog.ImportRow{}, err
		}
		nb.IsRead = &read
	}
	return catalog.ImportRow{Book: nb, Genre: r.Get("genre")}, nil
}

func optionalColumn(r csvutil.Row, name string) *string {
	v := r.Get(name)
	if v == "" {
		return nil
	}
	return &v
}

func parseRead(v string) (int64, error) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return 1, nil
	case "0", "false", "no", "n":
		return 0, nil
	}
	return 0, fmt.Errorf("is_read %q is not a boolean", v)
}

func (c *BookExportCmd) Run(app *App) error {
	format := c.As
	if format == "auto" {
		format = formatFromExt(c.Path)
	}

	svc, err := app.Catalog()
	if err != nil {
		return err
	}
	books, err := svc.ExportBooks(context.Background())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if format == "csv" {
		err = csvutil.Write(&buf, csvColumns, exportRecords(books))
	} else {
		err = render(&buf, format, books)
	}
	if err != nil {
		return err
	}

	written, err := fileutil.WriteFileWithOverwrite(c.Path, buf.Bytes(), 0644, c.Overwrite)
	if err != nil {
		return err
	}
	if !written {
		return fmt.Errorf("%s already exists; pass --overwrite to replace it", c.Path)
	}
	return app.print(message{Message: fmt.Sprintf("exported %d books to %s", len(books), c.Path)})
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "csv"
	}
}

func exportRecords(books []catalog.ExportedBook) [][]string {
	records := make([][]string, 0, len(books))
	for _, b := range books {
		price := ""
		if b.Price != nil {
			price = strconv.FormatInt(*b.Price, 10)
		}
		records = append(records, []string{
			b.Title, deref(b.ISBN), deref(b.Author), deref(b.Publisher),
			price, deref(b.ClassificationCode), strconv.FormatInt(b.IsRead, 10), b.Genre,
		})
	}
	return records
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
