package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDoc(title string) searchDoc {
	var doc searchDoc
	if title != "" {
		doc.PNX.Display.Title = []string{title}
	}
	return doc
}

func TestNormalizeDocFullRecord(t *testing.T) {
	t.Parallel()

	doc := makeDoc("Deep Learning")
	doc.PNX.Display.Creator = []string{"Goodfellow, Ian", "Bengio, Yoshua"}
	doc.PNX.Display.CreationDate = []string{"2016"}
	doc.PNX.Display.Type = []string{"book"}
	doc.Delivery.Link = []docLink{
		{DisplayLabel: "Details", LinkURL: "https://catalog.example.edu/record/1"},
		{DisplayLabel: "View Online", LinkURL: "https://catalog.example.edu/full/1"},
	}

	res, ok := normalizeDoc(doc)
	require.True(t, ok)
	assert.Equal(t, "Deep Learning", res.Title)
	assert.Equal(t, []string{"Goodfellow, Ian", "Bengio, Yoshua"}, res.Authors)
	assert.Equal(t, "2016", res.Year)
	assert.Equal(t, "book", res.Type)
	assert.Equal(t, "https://catalog.example.edu/full/1", res.URL)
}

func TestNormalizeDocMissingOptionalFields(t *testing.T) {
	t.Parallel()

	res, ok := normalizeDoc(makeDoc("Untyped Item"))
	require.True(t, ok)
	assert.Empty(t, res.Authors)
	assert.Empty(t, res.Year)
	assert.Empty(t, res.Type)
	assert.Empty(t, res.URL)
}

func TestNormalizeDocDropsMissingTitle(t *testing.T) {
	t.Parallel()

	_, ok := normalizeDoc(makeDoc(""))
	assert.False(t, ok)
}

func TestNormalizePayloadKeepsProviderTotal(t *testing.T) {
	t.Parallel()

	payload := searchPayload{
		Docs: []searchDoc{makeDoc("One"), makeDoc(""), makeDoc("Two")},
	}
	payload.Info.Total = 1234

	result := normalizePayload(payload)
	require.Len(t, result.Resources, 2)
	assert.Equal(t, "One", result.Resources[0].Title)
	assert.Equal(t, "Two", result.Resources[1].Title)
	assert.Equal(t, 1234, result.TotalMatched)
}

func TestPickLinkFallsBackToFirst(t *testing.T) {
	t.Parallel()

	url := pickLink([]docLink{
		{DisplayLabel: "Details", LinkURL: "https://catalog.example.edu/a"},
		{DisplayLabel: "Request", LinkURL: "https://catalog.example.edu/b"},
	})
	assert.Equal(t, "https://catalog.example.edu/a", url)
}
