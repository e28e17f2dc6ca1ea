package lexicon

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// maxKeywordLen bounds expanded keyword length in runes.
const maxKeywordLen = 64

// Normalize lowercases text, splits it on whitespace and commas, and drops
// tokens shorter than two runes or present in the stop-word set.
func Normalize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ','
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if utf8.RuneCountInString(f) < 2 {
			continue
		}
		if IsStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// extractable is the known domain vocabulary that can be pulled out of an
// unsegmented Thai token: category names, trigger words and synonym keys.
var extractable = buildExtractable()

func buildExtractable() []string {
	seen := make(map[string]struct{})
	add := func(w string) {
		w = strings.ToLower(w)
		if _, ok := seen[w]; !ok {
			seen[w] = struct{}{}
		}
	}
	for _, t := range searchTriggers {
		add(t.word)
	}
	for _, c := range Categories() {
		add(string(c))
	}
	for k := range synonyms {
		add(k)
	}

	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// ExpandKeywords unions the normalized tokens of the user text and the
// classifier-proposed keywords, then widens each token three ways: its
// prefix-stripped form, its direct synonyms, and any known domain word
// embedded in it. Thai is written without spaces, so "หาคาเฟ่ให้หน่อย" is a
// single token; extracting "คาเฟ่" from it is what lets the literal keyword
// match anything at all. The result is sorted and bounded to tokens of
// 1..64 runes.
func ExpandKeywords(userText, classifierKeywords string) []string {
	pool := make(map[string]struct{})

	add := func(token string) {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			return
		}
		pool[token] = struct{}{}
		for _, p := range prefixes {
			rest, ok := strings.CutPrefix(token, p)
			if ok && utf8.RuneCountInString(rest) >= 2 {
				pool[rest] = struct{}{}
			}
		}
		for _, syn := range synonyms[token] {
			pool[strings.ToLower(syn)] = struct{}{}
		}
		for _, w := range extractable {
			if w != token && strings.Contains(token, w) {
				pool[w] = struct{}{}
				for _, syn := range synonyms[w] {
					pool[strings.ToLower(syn)] = struct{}{}
				}
			}
		}
	}

	for _, tk := range Normalize(userText) {
		add(tk)
	}
	for _, tk := range Normalize(classifierKeywords) {
		add(tk)
	}

	out := make([]string, 0, len(pool))
	for tk := range pool {
		n := utf8.RuneCountInString(tk)
		if n >= 1 && n <= maxKeywordLen {
			out = append(out, tk)
		}
	}
	sort.Strings(out)
	return out
}
