package slides

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressureprofile/rma-starter/internal/config"
)

var testDecks = config.DeckTable{
	Glove:     "glove-deck",
	FingerTPS: "fingertps-deck",
	Spray:     "spray-deck",
}

func TestSelectDeckStandardProducts(t *testing.T) {
	tests := []struct {
		product string
		want    string
	}{
		{"TactileGlove", "glove-deck"},
		{"tactileglove v2", "glove-deck"},
		{"  FingerTPS Mini  ", "fingertps-deck"},
		{"Chameleon Spray Kit", "spray-deck"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectDeck(tt.product, "", testDecks), "product %q", tt.product)
	}
}

func TestSelectDeckFallsBackToLink(t *testing.T) {
	link := "https://docs.google.com/open?id=XYZ123"
	assert.Equal(t, "XYZ123", SelectDeck("Custom Rig", link, testDecks))
}

func TestSelectDeckNoDeck(t *testing.T) {
	assert.Equal(t, "", SelectDeck("Custom Rig", "", testDecks))
	assert.Equal(t, "", SelectDeck("Custom Rig", "not a slides url", testDecks))
}

func TestDeckFromLink(t *testing.T) {
	assert.Equal(t, "ABC", DeckFromLink("https://docs.google.com/open?id=ABC"))
	assert.Equal(t, "DEF", DeckFromLink("https://docs.google.com/presentation/d/DEF/edit#slide=id.p1"))
	assert.Equal(t, "", DeckFromLink(""))
}

func TestCleanURL(t *testing.T) {
	dirty := "https://docs.google.com/presentation/d/DEF/edit#slide=id.p1"
	assert.Equal(t, "https://docs.google.com/presentation/d/DEF/edit", CleanURL(dirty))

	// Unrecognized URLs pass through.
	assert.Equal(t, "https://example.com/x", CleanURL("https://example.com/x"))
}
