// Package sru parses SRU searchRetrieve responses whose recordData element
// carries a second, escaped XML document (recordPacking=string), as served by
// the National Diet Library search API with the dcndl record schema.
package sru

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// ErrRecordNotFound is returned when the envelope holds no recordData text.
var ErrRecordNotFound = errors.New("recordData not found")

// Record is the bibliographic triple extracted from one dcndl record.
type Record struct {
	Title     string
	Creator   string
	Publisher string
}

// IncompleteRecordError lists the fields a record was missing, using the
// names title, creator and publisher.
type IncompleteRecordError struct {
	Missing []string
}

func (e *IncompleteRecordError) Error() string {
	return fmt.Sprintf("record is missing [%s]", strings.Join(e.Missing, ", "))
}

// Parse extracts the first record from an SRU response body.
func Parse(r io.Reader) (Record, error) {
	inner, err := ExtractRecordData(r)
	if err != nil {
		return Record{}, err
	}
	return ParseRecord(inner)
}

// ExtractRecordData returns the unescaped text content of the first
// recordData element that has any. The namespace prefix is ignored.
func ExtractRecordData(r io.Reader) (string, error) {
	d := newDecoder(r)

	inRecordData := false
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return "", ErrRecordNotFound
		}
		if err != nil {
			return "", fmt.Errorf("outer XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "recordData" {
				inRecordData = true
			}
		case xml.EndElement:
			if t.Name.Local == "recordData" {
				inRecordData = false
			}
		case xml.CharData:
			if inRecordData {
				if text := strings.TrimSpace(string(t)); text != "" {
					return text, nil
				}
			}
		}
	}
}

// ParseRecord walks an unescaped dcndl document and collects the first
// dcterms:title text, the first foaf:name under dcterms:creator and the first
// foaf:name under dcterms:publisher.
func ParseRecord(doc string) (Record, error) {
	d := newDecoder(strings.NewReader(doc))

	var (
		st  state
		rec Record
	)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Record{}, fmt.Errorf("inner XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if f := flagFor(t.Name); f != 0 {
				st.enter(f)
			}
		case xml.EndElement:
			if f := flagFor(t.Name); f != 0 {
				st.leave(f)
			}
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			st.capture(text, &rec)
		}
	}

	var missing []string
	if rec.Title == "" {
		missing = append(missing, "title")
	}
	if rec.Creator == "" {
		missing = append(missing, "creator")
	}
	if rec.Publisher == "" {
		missing = append(missing, "publisher")
	}
	if len(missing) > 0 {
		return rec, &IncompleteRecordError{Missing: missing}
	}
	return rec, nil
}

func newDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	return d
}
