package book

import "strings"

// Candidate is an unpersisted title/author/publisher triple resolved from a
// single provider response.
type Candidate struct {
	Title     string `json:"title" yaml:"title"`
	Author    string `json:"author" yaml:"author"`
	Publisher string `json:"publisher" yaml:"publisher"`
}

// Missing returns the names of the empty fields, in title, author, publisher
// order.
func (c Candidate) Missing() []string {
	var missing []string
	if c.Title == "" {
		missing = append(missing, "title")
	}
	if c.Author == "" {
		missing = append(missing, "author")
	}
	if c.Publisher == "" {
		missing = append(missing, "publisher")
	}
	return missing
}

// Item is the normalized form of one entry in a provider response. Provider
// decoders fill it from their own typed payloads; fields are untrimmed.
type Item struct {
	Title     string
	Authors   []string
	Publisher string
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
