package sru

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const dcndlHeader = `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" ` +
	`xmlns:dcterms="http://purl.org/dc/terms/" xmlns:dc="http://purl.org/dc/elements/1.1/" ` +
	`xmlns:foaf="http://xmlns.com/foaf/0.1/" xmlns:dcndl="http://ndl.go.jp/dcndl/terms/">`

func dcndl(body string) string {
	return dcndlHeader + `<dcndl:BibResource>` + body + `</dcndl:BibResource></rdf:RDF>`
}

// envelope wraps an inner record the way the SRU endpoint does with
// recordPacking=string.
func envelope(t *testing.T, inner string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, xml.EscapeText(&buf, []byte(inner)))
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<searchRetrieveResponse xmlns="http://www.loc.gov/zing/srw/">` +
		`<version>1.2</version><numberOfRecords>1</numberOfRecords><records><record>` +
		`<recordSchema>info:ndl/dcndl</recordSchema><recordPacking>string</recordPacking>` +
		`<recordData>` + buf.String() + `</recordData>` +
		`<recordPosition>1</recordPosition></record></records></searchRetrieveResponse>`
}

const fullRecord = `
<dcterms:title>吾輩は猫である</dcterms:title>
<dcndl:titleTranscription>ワガハイ ワ ネコ デ アル</dcndl:titleTranscription>
<dcterms:title>Second title ignored</dcterms:title>
<dcterms:creator><foaf:Agent><foaf:name>夏目, 漱石</foaf:name><foaf:name>Natsume Soseki</foaf:name></foaf:Agent></dcterms:creator>
<dcterms:publisher><foaf:Agent><foaf:name>岩波書店</foaf:name><dcndl:location>東京</dcndl:location></foaf:Agent></dcterms:publisher>
`

func TestParseFullRecord(t *testing.T) {
	rec, err := Parse(strings.NewReader(envelope(t, dcndl(fullRecord))))
	require.NoError(t, err)
	require.Equal(t, Record{Title: "吾輩は猫である", Creator: "夏目, 漱石", Publisher: "岩波書店"}, rec)
}

func TestParseWithoutRecordData(t *testing.T) {
	body := `<searchRetrieveResponse><numberOfRecords>0</numberOfRecords><records/></searchRetrieveResponse>`

	_, err := Parse(strings.NewReader(body))
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestExtractRecordDataSkipsEmptyRecordData(t *testing.T) {
	body := `<r><recordData>   </recordData><other>not this</other><recordData>&lt;x/&gt;</recordData></r>`

	got, err := ExtractRecordData(strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, "<x/>", got)
}

func TestExtractRecordDataMalformed(t *testing.T) {
	_, err := ExtractRecordData(strings.NewReader(`<r><a></b><recordData>text</recordData></r>`))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrRecordNotFound)
}

func TestParseRecordReportsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing []string
	}{
		{
			name:    "no publisher",
			body:    `<dcterms:title>T</dcterms:title><dcterms:creator><foaf:Agent><foaf:name>A</foaf:name></foaf:Agent></dcterms:creator>`,
			missing: []string{"publisher"},
		},
		{
			name:    "title only",
			body:    `<dcterms:title>T</dcterms:title>`,
			missing: []string{"creator", "publisher"},
		},
		{
			name:    "empty document body",
			body:    ``,
			missing: []string{"title", "creator", "publisher"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord(dcndl(tt.body))
			var incomplete *IncompleteRecordError
			require.ErrorAs(t, err, &incomplete)
			require.Equal(t, tt.missing, incomplete.Missing)
		})
	}
}

func TestParseRecordContextIsolation(t *testing.T) {
	// The same foaf:name leaf appears under creator, publisher and an
	// unrelated subject; each must land only where its ancestor says.
	body := `
<dcterms:subject><foaf:Agent><foaf:name>Stray Name</foaf:name></foaf:Agent></dcterms:subject>
<dcterms:publisher><foaf:Agent><foaf:name>Publisher Name</foaf:name></foaf:Agent></dcterms:publisher>
<dcterms:title>Title</dcterms:title>
<dcterms:creator><foaf:Agent><foaf:name>Creator Name</foaf:name></foaf:Agent></dcterms:creator>
`
	rec, err := ParseRecord(dcndl(body))
	require.NoError(t, err)
	require.Equal(t, "Creator Name", rec.Creator)
	require.Equal(t, "Publisher Name", rec.Publisher)
}

func TestParseRecordNameOutsideContext(t *testing.T) {
	body := `<dcterms:title>Title</dcterms:title><foaf:name>Loose</foaf:name>` +
		`<dcterms:subject><foaf:name>Subject</foaf:name></dcterms:subject>`

	rec, err := ParseRecord(dcndl(body))
	var incomplete *IncompleteRecordError
	require.ErrorAs(t, err, &incomplete)
	require.Equal(t, []string{"creator", "publisher"}, incomplete.Missing)
	require.Empty(t, rec.Creator)
	require.Empty(t, rec.Publisher)
}

func TestParseRecordEmptyTitleDoesNotLeak(t *testing.T) {
	// An empty title element must not capture the next unrelated text.
	body := `<dcterms:title></dcterms:title><dcterms:description>Not a title</dcterms:description>` +
		`<dcterms:creator><foaf:name>A</foaf:name></dcterms:creator>` +
		`<dcterms:publisher><foaf:name>P</foaf:name></dcterms:publisher>`

	rec, err := ParseRecord(dcndl(body))
	var incomplete *IncompleteRecordError
	require.ErrorAs(t, err, &incomplete)
	require.Equal(t, []string{"title"}, incomplete.Missing)
	require.Empty(t, rec.Title)
}

func TestParseRecordUndeclaredPrefixes(t *testing.T) {
	doc := `<root><dcterms:title>T</dcterms:title>` +
		`<dcterms:creator><foaf:name>A</foaf:name></dcterms:creator>` +
		`<dcterms:publisher><foaf:name>P</foaf:name></dcterms:publisher></root>`

	rec, err := ParseRecord(doc)
	require.NoError(t, err)
	require.Equal(t, Record{Title: "T", Creator: "A", Publisher: "P"}, rec)
}

func TestParseRecordMalformed(t *testing.T) {
	_, err := ParseRecord(`<rdf:RDF><dcterms:title>T</rdf:RDF>`)
	require.Error(t, err)

	var incomplete *IncompleteRecordError
	require.False(t, errors.As(err, &incomplete))
}

func TestStateTransitions(t *testing.T) {
	var st state
	var rec Record

	st.enter(inPublisher)
	st.enter(inName)
	st.capture("P1", &rec)
	st.capture("P2", &rec)
	st.leave(inName)
	st.leave(inPublisher)
	require.Equal(t, "P1", rec.Publisher)
	require.Empty(t, rec.Creator)

	st.enter(inTitle)
	st.capture("T1", &rec)
	require.False(t, st.has(inTitle))
	st.capture("T2", &rec)
	require.Equal(t, "T1", rec.Title)
}
