package sru

import "encoding/xml"

// flag is one parser context bit.
type flag uint8

const (
	inTitle flag = 1 << iota
	inCreator
	inPublisher
	inName
)

const (
	nsDCTerms = "http://purl.org/dc/terms/"
	nsFOAF    = "http://xmlns.com/foaf/0.1/"
)

// flagFor maps an element name to the context it opens. encoding/xml reports
// the namespace URL when the prefix is declared and the bare prefix when it is
// not, so both spellings are accepted.
func flagFor(name xml.Name) flag {
	switch name.Space {
	case nsDCTerms, "dcterms":
		switch name.Local {
		case "title":
			return inTitle
		case "creator":
			return inCreator
		case "publisher":
			return inPublisher
		}
	case nsFOAF, "foaf":
		if name.Local == "name" {
			return inName
		}
	}
	return 0
}

// state is the set of open contexts while walking a record.
type state struct {
	open flag
}

func (s *state) enter(f flag) { s.open |= f }

func (s *state) leave(f flag) { s.open &^= f }

func (s *state) has(f flag) bool { return s.open&f != 0 }

// capture assigns text to at most one field. Only the first title text is
// kept and the title context closes as soon as it is consumed. A name is
// attributed by its enclosing context; creator wins when both are open.
func (s *state) capture(text string, rec *Record) {
	switch {
	case s.has(inTitle):
		if rec.Title == "" {
			rec.Title = text
		}
		s.leave(inTitle)
	case s.has(inName) && s.has(inCreator):
		if rec.Creator == "" {
			rec.Creator = text
		}
	case s.has(inName) && s.has(inPublisher):
		if rec.Publisher == "" {
			rec.Publisher = text
		}
	}
}
