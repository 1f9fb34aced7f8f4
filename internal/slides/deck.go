package slides

import (
	"regexp"
	"strings"

	"github.com/pressureprofile/rma-starter/internal/config"
)

var presentationURLPattern = regexp.MustCompile(`/presentation/d/([^/?#]+)`)

// SelectDeck picks the presentation deck that collects RMA slides for
// a product. The standard product lines map to their dedicated decks;
// anything else falls back to the deck named by the form's slides
// link, if one was supplied. Returns "" when no deck applies.
func SelectDeck(product, slidesLink string, decks config.DeckTable) string {
	name := strings.ToLower(strings.TrimSpace(product))
	switch {
	case strings.HasPrefix(name, "tactileglove"):
		return decks.Glove
	case strings.HasPrefix(name, "fingertps"):
		return decks.FingerTPS
	case strings.Contains(name, "spray"):
		return decks.Spray
	}
	return DeckFromLink(slidesLink)
}

// DeckFromLink extracts a presentation id from a Slides URL. Both the
// short "open?id=" form and the full editor URL are accepted.
func DeckFromLink(link string) string {
	if link == "" {
		return ""
	}
	if _, id, found := strings.Cut(link, "?id="); found {
		return id
	}
	if matches := presentationURLPattern.FindStringSubmatch(link); len(matches) == 2 {
		return matches[1]
	}
	return ""
}

// CanonicalURL is the short shareable URL for a Drive file.
func CanonicalURL(fileID string) string {
	return "https://docs.google.com/open?id=" + fileID
}

// CleanURL reduces a Slides URL to its canonical editor form, dropping
// any slide fragment or query. Unrecognized URLs pass through
// unchanged.
func CleanURL(link string) string {
	if id := DeckFromLink(link); id != "" {
		return "https://docs.google.com/presentation/d/" + id + "/edit"
	}
	return link
}
