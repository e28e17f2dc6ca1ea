package retrieval

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/triptech-ai/pathio-guide/internal/lexicon"
	"github.com/triptech-ai/pathio-guide/internal/storage"
)

// Ranking bonuses on top of the fuzzy base score.
const (
	bonusNameContainsQuery = 25
	bonusCategoryMatch     = 15
	bonusTambonMatch       = 8
)

// RankParams configure one ranking pass.
type RankParams struct {
	Query     string
	Keywords  []string
	Category  string
	Tambon    string
	Threshold int
	TopK      int
}

// scored pairs a candidate with its rank score.
type scored struct {
	place storage.Place
	score int
}

// Rank orders candidates by fuzzy relevance. The base score is the best
// partial-ratio of the query and each keyword against the candidate's search
// blob; exact-ish signals add fixed bonuses. Candidates at or above the
// threshold survive; when none reach it the top candidates are kept anyway so
// a weak query still gets an answer. At most TopK rows come back, and equal
// scores preserve the incoming order, so ranking is deterministic and
// idempotent.
func Rank(places []storage.Place, p RankParams) []storage.Place {
	if len(places) == 0 {
		return nil
	}
	if p.TopK <= 0 {
		p.TopK = 12
	}

	query := strings.ToLower(strings.TrimSpace(p.Query))
	terms := make([]string, 0, len(p.Keywords)+1)
	if query != "" {
		terms = append(terms, query)
	}
	for _, kw := range p.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			terms = append(terms, kw)
		}
	}

	out := make([]scored, 0, len(places))
	for _, place := range places {
		out = append(out, scored{place: place, score: scorePlace(&place, query, terms, p)})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })

	kept := make([]storage.Place, 0, p.TopK)
	for _, s := range out {
		if s.score >= p.Threshold {
			kept = append(kept, s.place)
		}
	}
	if len(kept) == 0 {
		// Nothing cleared the bar; fall back to the best few.
		for _, s := range out {
			kept = append(kept, s.place)
		}
	}
	if len(kept) > p.TopK {
		kept = kept[:p.TopK]
	}
	return kept
}

func scorePlace(place *storage.Place, query string, terms []string, p RankParams) int {
	blob := place.SearchBlob()

	score := 0
	for _, term := range terms {
		if r := fuzzy.PartialRatio(term, blob); r > score {
			score = r
		}
	}

	if query != "" && strings.Contains(strings.ToLower(place.Name), query) {
		score += bonusNameContainsQuery
	}
	if p.Category != "" {
		if cat, ok := lexicon.ResolveCategory(p.Category); ok &&
			lexicon.MatchesAllowList(cat, place.Category+" "+place.Name) {
			score += bonusCategoryMatch
		}
	}
	if p.Tambon != "" && strings.Contains(place.Tambon, p.Tambon) {
		score += bonusTambonMatch
	}
	return score
}
