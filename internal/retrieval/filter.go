package retrieval

import (
	"strings"

	"github.com/triptech-ai/pathio-guide/internal/lexicon"
	"github.com/triptech-ai/pathio-guide/internal/storage"
)

// FilterByCategory keeps candidates whose category or name passes the
// allow-list of the requested category. When the filter would wipe out every
// candidate, the unfiltered set comes back instead, with fellBack true, so a
// loosely tagged dataset never turns a decent result list into silence.
func FilterByCategory(places []storage.Place, category string) (kept []storage.Place, fellBack bool) {
	cat, ok := lexicon.ResolveCategory(category)
	if !ok || len(places) == 0 {
		return places, false
	}

	for _, p := range places {
		if lexicon.MatchesAllowList(cat, p.Category+" "+p.Name) {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return places, true
	}
	return kept, false
}

// KeywordGate keeps candidates whose search blob literally contains at least
// one of the keywords. Unlike the category filter this gate is strict: an
// empty result is a valid outcome, signalling a genuine no-match. With no
// keywords the gate is a no-op.
func KeywordGate(places []storage.Place, keywords []string) []storage.Place {
	if len(keywords) == 0 {
		return places
	}

	var kept []storage.Place
	for _, p := range places {
		blob := p.SearchBlob()
		for _, kw := range keywords {
			if kw != "" && strings.Contains(blob, strings.ToLower(kw)) {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept
}
