package book

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		item   Item
		want   Candidate
		wantOK bool
	}{
		{
			name:   "trims all fields",
			item:   Item{Title: "  Norwegian Wood ", Authors: []string{" Haruki Murakami "}, Publisher: " Kodansha\n"},
			want:   Candidate{Title: "Norwegian Wood", Author: "Haruki Murakami", Publisher: "Kodansha"},
			wantOK: true,
		},
		{
			name:   "joins authors and drops blanks",
			item:   Item{Title: "Good Omens", Authors: []string{"Terry Pratchett", "  ", "", "Neil Gaiman"}},
			want:   Candidate{Title: "Good Omens", Author: "Terry Pratchett, Neil Gaiman"},
			wantOK: true,
		},
		{
			name:   "missing authors is not a rejection",
			item:   Item{Title: "Anonymous Work", Publisher: "Unknown Press"},
			want:   Candidate{Title: "Anonymous Work", Publisher: "Unknown Press"},
			wantOK: true,
		},
		{
			name: "blank title rejects the item",
			item: Item{Title: "   ", Authors: []string{"Someone"}, Publisher: "Somewhere"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.item)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPolicyComplete(t *testing.T) {
	titleOnly := Candidate{Title: "T"}
	full := Candidate{Title: "T", Author: "A", Publisher: "P"}

	require.True(t, Permissive.Complete(titleOnly))
	require.False(t, Strict.Complete(titleOnly))
	require.True(t, Strict.Complete(full))
	require.False(t, Permissive.Complete(Candidate{Author: "A"}))
}

func TestFirstCompleteScansInOrder(t *testing.T) {
	items := []Item{
		{Title: "", Authors: []string{"First Author"}},
		{Title: "Second", Publisher: "Second Press"},
		{Title: "Third", Authors: []string{"Third Author"}, Publisher: "Third Press"},
	}

	got, ok := FirstComplete(items, Permissive)
	require.True(t, ok)
	require.Equal(t, Candidate{Title: "Second", Publisher: "Second Press"}, got)

	got, ok = FirstComplete(items, Strict)
	require.True(t, ok)
	require.Equal(t, "Third", got.Title)

	_, ok = FirstComplete(items[:2], Strict)
	require.False(t, ok)
}

func TestCandidateMissing(t *testing.T) {
	require.Empty(t, Candidate{Title: "T", Author: "A", Publisher: "P"}.Missing())
	require.Equal(t, []string{"title", "author", "publisher"}, Candidate{}.Missing())
	require.Equal(t, []string{"publisher"}, Candidate{Title: "T", Author: "A"}.Missing())
}

func TestRequestCredential(t *testing.T) {
	req := Request{ISBN: "1", Credentials: map[string]string{CredentialAPIKey: "  key  "}}

	require.Equal(t, "key", req.Credential(CredentialAPIKey))
	require.Empty(t, req.Credential(CredentialApplicationID))
	require.Empty(t, Request{}.Credential(CredentialAPIKey))
}
