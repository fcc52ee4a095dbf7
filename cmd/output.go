package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/lepinkainen/bibly/internal/catalog"
	"github.com/lepinkainen/bibly/internal/enrichment"
	"github.com/lepinkainen/bibly/internal/enrichment/book"
	"gopkg.in/yaml.v3"
)

// genreCount is the result of book count.
type genreCount struct {
	GenreID int64 `json:"genre_id" yaml:"genre_id"`
	Count   int64 `json:"count" yaml:"count"`
}

// message is a plain confirmation such as "deleted book 3".
type message struct {
	Message string `json:"message" yaml:"message"`
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "", "text":
		return renderText(w, v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderText(w io.Writer, v any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	switch v := v.(type) {
	case []catalog.Genre:
		fmt.Fprintln(tw, "ID\tNAME")
		for _, g := range v {
			fmt.Fprintf(tw, "%d\t%s\n", g.ID, g.Name)
		}
	case catalog.Genre:
		fmt.Fprintf(tw, "%d\t%s\n", v.ID, v.Name)
	case []catalog.Book:
		fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tPUBLISHER\tISBN\tGENRE\tREAD")
		for _, b := range v {
			writeBookRow(tw, b)
		}
	case catalog.Book:
		fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tPUBLISHER\tISBN\tGENRE\tREAD")
		writeBookRow(tw, v)
	case book.Candidate:
		fmt.Fprintf(tw, "Title:\t%s\nAuthor:\t%s\nPublisher:\t%s\n", v.Title, v.Author, v.Publisher)
	case []enrichment.Result:
		fmt.Fprintln(tw, "PROVIDER\tSTATUS\tTITLE\tAUTHOR\tPUBLISHER")
		for _, r := range v {
			if r.OK() {
				fmt.Fprintf(tw, "%s\tok\t%s\t%s\t%s\n", r.Provider, r.Candidate.Title, r.Candidate.Author, r.Candidate.Publisher)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t\t\n", r.Provider, r.Error.Code, r.Error.Message)
		}
	case genreCount:
		fmt.Fprintf(tw, "%d\n", v.Count)
	case message:
		fmt.Fprintln(tw, v.Message)
	default:
		fmt.Fprintf(tw, "%v\n", v)
	}
	return tw.Flush()
}

func writeBookRow(w io.Writer, b catalog.Book) {
	read := "no"
	if b.IsRead != 0 {
		read = "yes"
	}
	genre := "-"
	if b.GenreID != nil {
		genre = strconv.FormatInt(*b.GenreID, 10)
	}
	fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
		b.ID, b.Title, orDash(b.Author), orDash(b.Publisher), orDash(b.ISBN), genre, read)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
