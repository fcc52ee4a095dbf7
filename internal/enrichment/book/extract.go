package book

import "strings"

// Policy decides whether an extracted candidate is complete enough to accept.
type Policy int

const (
	// Permissive accepts any candidate with a title.
	Permissive Policy = iota
	// Strict requires title, author and publisher.
	Strict
)

func (p Policy) String() string {
	switch p {
	case Permissive:
		return "permissive"
	case Strict:
		return "strict"
	default:
		return "unknown"
	}
}

// Complete reports whether c satisfies the policy.
func (p Policy) Complete(c Candidate) bool {
	if c.Title == "" {
		return false
	}
	if p == Strict {
		return c.Author != "" && c.Publisher != ""
	}
	return true
}

// Extract builds a candidate from item. It returns false when the trimmed
// title is empty. Author names are trimmed, blanks dropped, and joined with
// ", ".
func Extract(item Item) (Candidate, bool) {
	title := trim(item.Title)
	if title == "" {
		return Candidate{}, false
	}

	authors := make([]string, 0, len(item.Authors))
	for _, name := range item.Authors {
		if name = trim(name); name != "" {
			authors = append(authors, name)
		}
	}

	return Candidate{
		Title:     title,
		Author:    strings.Join(authors, ", "),
		Publisher: trim(item.Publisher),
	}, true
}

// FirstComplete scans items in order and returns the first extracted candidate
// that satisfies policy.
func FirstComplete(items []Item, policy Policy) (Candidate, bool) {
	for _, item := range items {
		c, ok := Extract(item)
		if ok && policy.Complete(c) {
			return c, true
		}
	}
	return Candidate{}, false
}
