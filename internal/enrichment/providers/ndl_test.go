package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/lepinkainen/bibly/internal/enrichment/book"
	"github.com/lepinkainen/bibly/internal/sru"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dcndlRecord = `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:foaf="http://xmlns.com/foaf/0.1/">
<dcndl:BibResource xmlns:dcndl="http://ndl.go.jp/dcndl/terms/">
<dcterms:title>吾輩は猫である</dcterms:title>
<dcterms:creator><foaf:Agent><foaf:name>夏目漱石</foaf:name></foaf:Agent></dcterms:creator>
<dcterms:publisher><foaf:Agent><foaf:name>岩波書店</foaf:name></foaf:Agent></dcterms:publisher>
</dcndl:BibResource>
</rdf:RDF>`

func sruEnvelope(inner string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><searchRetrieveResponse xmlns="http://www.loc.gov/zing/srw/"><version>1.2</version>`)
	if inner != "" {
		b.WriteString(`<records><record><recordSchema>dcndl</recordSchema><recordPacking>string</recordPacking><recordData>`)
		b.WriteString(escapeXML(inner))
		b.WriteString(`</recordData></record></records>`)
	}
	b.WriteString(`</searchRetrieveResponse>`)
	return b.String()
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func TestNDLLookup(t *testing.T) {
	base, calls, lastQuery := stubServer(t, http.StatusOK, "application/xml", sruEnvelope(dcndlRecord))
	p := NewNDL(testOptions(base)...)

	got, err := p.Lookup(context.Background(), book.Request{ISBN: "978-4-00-310101-8"})
	require.NoError(t, err)
	assert.Equal(t, book.Candidate{Title: "吾輩は猫である", Author: "夏目漱石", Publisher: "岩波書店"}, got)
	assert.EqualValues(t, 1, calls.Load())

	query := lastQuery.Load().(string)
	assert.True(t, strings.HasPrefix(query, "/api/sru?"))
	assert.Contains(t, query, "operation=searchRetrieve")
	assert.Contains(t, query, "recordSchema=dcndl")
	assert.Contains(t, query, "query=isbn%3D9784003101018")
}

func TestNDLLookupNoRecord(t *testing.T) {
	base, _, _ := stubServer(t, http.StatusOK, "application/xml", sruEnvelope(""))
	p := NewNDL(testOptions(base)...)

	_, err := p.Lookup(context.Background(), book.Request{ISBN: "9780000000000"})
	require.ErrorIs(t, err, sru.ErrRecordNotFound)
}

func TestNDLLookupIncompleteRecord(t *testing.T) {
	inner := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:dcterms="http://purl.org/dc/terms/">
<dcterms:title>Untitled Pamphlet</dcterms:title>
</rdf:RDF>`
	base, _, _ := stubServer(t, http.StatusOK, "application/xml", sruEnvelope(inner))
	p := NewNDL(testOptions(base)...)

	_, err := p.Lookup(context.Background(), book.Request{ISBN: "9780000000000"})
	var incomplete *sru.IncompleteRecordError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []string{"creator", "publisher"}, incomplete.Missing)
}

func TestNDLLookupBlankISBN(t *testing.T) {
	base, calls, _ := stubServer(t, http.StatusOK, "application/xml", sruEnvelope(dcndlRecord))
	p := NewNDL(testOptions(base)...)

	_, err := p.Lookup(context.Background(), book.Request{ISBN: " "})
	require.ErrorIs(t, err, book.ErrInvalidISBN)
	assert.Zero(t, calls.Load())
}
