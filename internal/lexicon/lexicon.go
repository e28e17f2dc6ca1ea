// Package lexicon holds the static language data for the Pathio district
// place finder: the category taxonomy, per-category allow-lists, synonym and
// prefix tables, stop words, known tambon names and conversational trigger
// phrases. Pure data, no behavior beyond lookups.
package lexicon

import (
	"sort"
	"strings"
)

// Category is one of the fixed canonical place types.
type Category string

const (
	CategoryCafe       Category = "คาเฟ่"
	CategoryRestaurant Category = "ร้านอาหาร"
	CategoryGym        Category = "ยิม"
	CategoryMarket     Category = "ตลาด"
	CategoryTemple     Category = "วัด"
	CategoryLodging    Category = "ที่พัก"
	CategoryFuel       Category = "ปั๊มน้ำมัน"
	CategoryRepair     Category = "ร้านซ่อม"
	CategoryAttraction Category = "ที่เที่ยว"
)

// Categories returns the canonical category set in a fixed order.
func Categories() []Category {
	return []Category{
		CategoryCafe, CategoryRestaurant, CategoryGym, CategoryMarket,
		CategoryTemple, CategoryLodging, CategoryFuel, CategoryRepair,
		CategoryAttraction,
	}
}

// knownTambons lists the localities of the district that are trusted as
// search filters. Anything else a classifier proposes is discarded.
var knownTambons = []string{
	"ชุมโค", "บางสน", "ดอนยาง", "ปากคลอง", "ช้างแรก", "ทะเลทรัพย์", "เขาไชยราช",
}

// KnownTambons returns the trusted tambon names.
func KnownTambons() []string {
	out := make([]string, len(knownTambons))
	copy(out, knownTambons)
	return out
}

// IsKnownTambon reports whether name is a trusted locality.
func IsKnownTambon(name string) bool {
	for _, t := range knownTambons {
		if t == name {
			return true
		}
	}
	return false
}

// TambonInText returns the first known tambon literally present in text,
// or "" when none is.
func TambonInText(text string) string {
	for _, t := range knownTambons {
		if strings.Contains(text, t) {
			return t
		}
	}
	return ""
}

// prefixes are the compounding prefixes commonly glued onto category nouns
// ("ร้านกาแฟ", "โรงยิม"). Stripping them recovers the bare noun for matching.
var prefixes = []string{"โรง", "ร้าน", "ศูนย์", "สถาน", "ที่", "บ้าน"}

// Prefixes returns the prefix-strip list.
func Prefixes() []string {
	out := make([]string, len(prefixes))
	copy(out, prefixes)
	return out
}

// synonyms maps a token to its colloquial or branded equivalents. Entries are
// direct only; the table is not transitively closed.
var synonyms = map[string][]string{
	"ยิม":        {"ฟิตเนส", "ฟิตเนสคลับ", "ฟิตเนสเซ็นเตอร์", "โรงยิม"},
	"ฟิตเนส":     {"ยิม", "โรงยิม"},
	"โรงยิม":     {"ยิม", "ฟิตเนส"},
	"คาเฟ่":      {"กาแฟ", "คอฟฟี่", "coffee", "ร้านกาแฟ"},
	"กาแฟ":       {"คาเฟ่", "คอฟฟี่", "ร้านกาแฟ"},
	"ปั๊มน้ำมัน": {"ปั๊ม", "ptt", "บางจาก", "เชลล์", "พีที"},
	"ปั๊ม":       {"ปั๊มน้ำมัน", "ptt", "บางจาก", "เชลล์", "พีที"},
	"ตลาด":       {"ตลาดนัด", "ตลาดสด", "มาร์เก็ต"},
	"ที่พัก":     {"รีสอร์ท", "โรงแรม", "โฮมสเตย์"},
	"รีสอร์ท":    {"ที่พัก", "โรงแรม"},
	"วัด":        {"สำนักสงฆ์"},
	"ทะเล":       {"หาด", "ชายหาด"},
	"หาด":        {"ทะเล", "ชายหาด"},
}

// Synonyms returns the direct synonym entries for token, or nil.
func Synonyms(token string) []string {
	return synonyms[token]
}

// stopWords are particles and filler dropped during normalization.
var stopWords = map[string]struct{}{
	"ครับ": {}, "ค่ะ": {}, "คะ": {}, "จ้า": {}, "จ๊ะ": {}, "นะ": {},
	"หน่อย": {}, "บ้าง": {}, "ไหม": {}, "มั้ย": {}, "ด้วย": {},
	"และ": {}, "หรือ": {}, "กับ": {}, "ของ": {}, "ให้": {},
	"the": {}, "a": {}, "an": {}, "in": {}, "at": {}, "of": {},
}

// IsStopWord reports whether token carries no search signal.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// allowLists broaden each canonical category for post-filtering: a candidate
// passes when its category or name contains any listed term. Broader than the
// canonical name because stored rows tag categories loosely.
var allowLists = map[Category][]string{
	CategoryCafe:       {"คาเฟ่", "กาแฟ", "คอฟฟี่", "coffee", "เบเกอรี่", "ขนม"},
	CategoryRestaurant: {"ร้านอาหาร", "อาหาร", "ซีฟู้ด", "อาหารทะเล", "ก๋วยเตี๋ยว", "ครัว", "ส้มตำ", "ข้าว"},
	CategoryGym:        {"ยิม", "ฟิตเนส", "ออกกำลังกาย"},
	CategoryMarket:     {"ตลาด", "มาร์เก็ต"},
	CategoryTemple:     {"วัด", "สำนักสงฆ์"},
	CategoryLodging:    {"ที่พัก", "รีสอร์ท", "โรงแรม", "โฮมสเตย์", "บังกะโล"},
	CategoryFuel:       {"ปั๊ม", "น้ำมัน", "ptt", "บางจาก", "เชลล์", "พีที"},
	CategoryRepair:     {"ซ่อม", "อู่", "ปะยาง", "คาร์แคร์"},
	CategoryAttraction: {"ที่เที่ยว", "ทะเล", "หาด", "ชายหาด", "น้ำตก", "จุดชมวิว", "เกาะ", "ถ้ำ"},
}

// AllowList returns the match terms for a canonical category.
func AllowList(cat Category) []string {
	return allowLists[cat]
}

// MatchesAllowList reports whether text contains any allow-list term for cat,
// case-insensitively.
func MatchesAllowList(cat Category, text string) bool {
	lower := strings.ToLower(text)
	for _, term := range allowLists[cat] {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// ResolveCategory maps a free-form category string (classifier output or
// stored row value) to a canonical category.
func ResolveCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	for _, cat := range Categories() {
		if s == string(cat) {
			return cat, true
		}
	}
	// Fall back to allow-list containment in either direction.
	for _, cat := range Categories() {
		for _, term := range allowLists[cat] {
			if strings.Contains(s, term) || strings.Contains(term, s) {
				return cat, true
			}
		}
	}
	return "", false
}

// searchTrigger binds a high-confidence utterance substring to a category.
type searchTrigger struct {
	word string
	cat  Category
}

// searchTriggers is the deterministic safety net: if any of these appear in
// the raw utterance, the turn is a search regardless of what the
// probabilistic classifier said. Ordered, first match wins.
var searchTriggers = []searchTrigger{
	{"กาแฟ", CategoryCafe},
	{"คาเฟ่", CategoryCafe},
	{"คอฟฟี่", CategoryCafe},
	{"หิว", CategoryRestaurant},
	{"ข้าว", CategoryRestaurant},
	{"อาหาร", CategoryRestaurant},
	{"ก๋วยเตี๋ยว", CategoryRestaurant},
	{"ซีฟู้ด", CategoryRestaurant},
	{"ออกกำลังกาย", CategoryGym},
	{"ฟิตเนส", CategoryGym},
	{"ยิม", CategoryGym},
	{"ตลาด", CategoryMarket},
	{"ไหว้พระ", CategoryTemple},
	{"ทำบุญ", CategoryTemple},
	{"วัด", CategoryTemple},
	{"ที่พัก", CategoryLodging},
	{"รีสอร์ท", CategoryLodging},
	{"โรงแรม", CategoryLodging},
	{"โฮมสเตย์", CategoryLodging},
	{"เติมน้ำมัน", CategoryFuel},
	{"ปั๊มน้ำมัน", CategoryFuel},
	{"ปั๊ม", CategoryFuel},
	{"ปะยาง", CategoryRepair},
	{"ซ่อมรถ", CategoryRepair},
	{"ชายหาด", CategoryAttraction},
	{"ทะเล", CategoryAttraction},
	{"หาด", CategoryAttraction},
	{"น้ำตก", CategoryAttraction},
	{"เที่ยว", CategoryAttraction},
}

// TriggerCategory scans the raw utterance for a high-confidence category
// trigger. Returns the mapped category and whether anything matched.
func TriggerCategory(utterance string) (Category, bool) {
	lower := strings.ToLower(utterance)
	for _, t := range searchTriggers {
		if strings.Contains(lower, t.word) {
			return t.cat, true
		}
	}
	return "", false
}

// FirstCategoryMention returns the category whose trigger word occurs
// earliest in text. Unlike TriggerCategory, position wins over table order,
// which matters when a negation tail names one category before another.
func FirstCategoryMention(text string) (Category, bool) {
	lower := strings.ToLower(text)
	best := -1
	var bestCat Category
	for _, t := range searchTriggers {
		if idx := strings.Index(lower, t.word); idx >= 0 {
			if best < 0 || idx < best {
				best = idx
				bestCat = t.cat
			}
		}
	}
	if best < 0 {
		return "", false
	}
	return bestCat, true
}

// CategoryMentions returns every category the text mentions through a trigger
// word, ordered by first occurrence and deduplicated.
func CategoryMentions(text string) []Category {
	lower := strings.ToLower(text)

	type mention struct {
		idx int
		cat Category
	}
	var hits []mention
	for _, t := range searchTriggers {
		if idx := strings.Index(lower, t.word); idx >= 0 {
			hits = append(hits, mention{idx: idx, cat: t.cat})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].idx < hits[j].idx })

	seen := make(map[Category]struct{}, len(hits))
	var out []Category
	for _, h := range hits {
		if _, ok := seen[h.cat]; ok {
			continue
		}
		seen[h.cat] = struct{}{}
		out = append(out, h.cat)
	}
	return out
}

// Conversational trigger phrases, consumed by the mode detector.

// ChoosePhrases mark a "choose for me" request over the last result set.
var ChoosePhrases = []string{"เลือกให้", "ช่วยเลือก", "แนะนำให้", "อันไหนดี", "อันไหนเด็ด"}

// NegationPhrases mark an explicit rejection ("no more X").
var NegationPhrases = []string{"ไม่เอา", "ไม่อยาก", "อย่าแนะนำ", "เลิกแนะนำ", "ปิดหมด"}

// ClosedAllPhrases are the "everything's closed" variants that reject the
// dominant category of the last result set rather than naming one.
var ClosedAllPhrases = []string{"ปิดหมด", "ปิดหมดแล้ว", "ปิดกันหมด"}

// PlaceRefPhrases reference the place currently in focus.
var PlaceRefPhrases = []string{"ที่นี่", "ที่นั่น", "ร้านนี้", "ที่นั้น", "ร้านเมื่อกี้", "ที่เมื่อกี้"}
