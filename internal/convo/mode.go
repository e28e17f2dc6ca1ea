package convo

import (
	"regexp"
	"strings"

	"github.com/triptech-ai/pathio-guide/internal/lexicon"
)

// Mode tags how the current turn should be handled.
type Mode string

const (
	ModeChitChat       Mode = "chitchat"
	ModeFollowup       Mode = "followup"
	ModeMapRequest     Mode = "map_request"
	ModeChooseFromLast Mode = "choose_from_last"
	ModeNewSearch      Mode = "new_search"
)

// Aspects are the sub-questions a follow-up turn may ask about the focused
// place.
type Aspects struct {
	Highlight bool
	Hours     bool
	Price     bool
	Location  bool
}

// Any reports whether at least one aspect was asked.
func (a Aspects) Any() bool {
	return a.Highlight || a.Hours || a.Price || a.Location
}

// aspectRule binds a pattern to the aspect it asks about. Location asks are
// surfaced as a map request rather than a plain follow-up.
type aspectRule struct {
	re  *regexp.Regexp
	tag string
}

var aspectRules = []aspectRule{
	{regexp.MustCompile(`จุดเด่น|เด่นอะไร|เด่นยังไง|พิเศษอะไร|เด็ดอะไร`), "highlight"},
	{regexp.MustCompile(`เปิดกี่โมง|ปิดกี่โมง|เวลาเปิด|เปิดไหม|เปิดยัง|เปิดถึงกี่โมง`), "hours"},
	{regexp.MustCompile(`ราคา|กี่บาท|แพงไหม|แพงมั้ย|ถูกไหม`), "price"},
	{regexp.MustCompile(`อยู่ไหน|อยู่ที่ไหน|อยู่ตรงไหน|ไปยังไง|ไปทางไหน|แผนที่|พิกัด`), "location"},
}

// DetectAspects extracts the asked sub-questions from the utterance.
func DetectAspects(utterance string) Aspects {
	var a Aspects
	for _, r := range aspectRules {
		if !r.re.MatchString(utterance) {
			continue
		}
		switch r.tag {
		case "highlight":
			a.Highlight = true
		case "hours":
			a.Hours = true
		case "price":
			a.Price = true
		case "location":
			a.Location = true
		}
	}
	return a
}

// SessionView is the slice of Session Context the detector needs.
type SessionView struct {
	HasFocusedPlace bool
}

// DetectMode classifies the turn. Priority order is fixed: an explicit
// "choose for me" is never misread as a new search, and a short trailing
// question like "อยู่ไหน" binds to the focused place instead of triggering an
// unconstrained search. ModeNewSearch here still defers to the intent
// classifier's wants-search verdict; the engine downgrades it to chit-chat.
func DetectMode(utterance string, sess SessionView) Mode {
	lower := strings.ToLower(strings.TrimSpace(utterance))

	for _, phrase := range lexicon.ChoosePhrases {
		if strings.Contains(lower, phrase) {
			return ModeChooseFromLast
		}
	}

	aspects := DetectAspects(lower)
	if aspects.Any() {
		refersToPlace := false
		for _, ref := range lexicon.PlaceRefPhrases {
			if strings.Contains(lower, ref) {
				refersToPlace = true
				break
			}
		}
		if refersToPlace || sess.HasFocusedPlace {
			if aspects.Location && !aspects.Highlight && !aspects.Hours && !aspects.Price {
				return ModeMapRequest
			}
			return ModeFollowup
		}
	}

	return ModeNewSearch
}

// ResolveBans inspects the utterance for negation language and resolves it
// to the canonical categories being rejected. Direct mentions win; the
// "everything's closed" phrasing falls back to the dominant category of the
// last result set. Returns nil when nothing resolves.
func ResolveBans(utterance string, lastCategories []string) []lexicon.Category {
	lower := strings.ToLower(strings.TrimSpace(utterance))

	negIdx := -1
	for _, phrase := range lexicon.NegationPhrases {
		if idx := strings.Index(lower, phrase); idx >= 0 {
			tail := idx + len(phrase)
			if negIdx < 0 || tail < negIdx {
				negIdx = tail
			}
		}
	}
	if negIdx < 0 {
		return nil
	}

	// Resolve against the text after the negation first, then the whole
	// utterance: "ไม่เอาตลาด" names its target directly.
	if cat, ok := lexicon.FirstCategoryMention(lower[negIdx:]); ok {
		return []lexicon.Category{cat}
	}
	if cat, ok := lexicon.FirstCategoryMention(lower); ok {
		return []lexicon.Category{cat}
	}

	for _, phrase := range lexicon.ClosedAllPhrases {
		if strings.Contains(lower, phrase) {
			if cat, ok := dominantCategory(lastCategories); ok {
				return []lexicon.Category{cat}
			}
		}
	}

	return nil
}

// dominantCategory returns the most frequent canonical category among the
// given raw category strings.
func dominantCategory(raw []string) (lexicon.Category, bool) {
	counts := make(map[lexicon.Category]int)
	for _, s := range raw {
		if cat, ok := lexicon.ResolveCategory(s); ok {
			counts[cat]++
		}
	}

	var best lexicon.Category
	bestCount := 0
	// Iterate the fixed category order so ties resolve deterministically.
	for _, cat := range lexicon.Categories() {
		if counts[cat] > bestCount {
			best = cat
			bestCount = counts[cat]
		}
	}
	if bestCount == 0 {
		return "", false
	}
	return best, true
}

// MergeBans appends newly resolved bans to the session ban list, preserving
// order and dropping duplicates. The input slice is never mutated.
func MergeBans(existing []string, additions []lexicon.Category) []string {
	out := make([]string, 0, len(existing)+len(additions))
	seen := make(map[string]struct{}, len(existing)+len(additions))
	for _, b := range existing {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	for _, a := range additions {
		if _, ok := seen[string(a)]; ok {
			continue
		}
		seen[string(a)] = struct{}{}
		out = append(out, string(a))
	}
	return out
}
