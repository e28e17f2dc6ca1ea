package retrieval

import (
	"fmt"

	"github.com/triptech-ai/pathio-guide/internal/lexicon"
	"github.com/triptech-ai/pathio-guide/internal/storage"
)

// richnessCap bounds how much description length alone can contribute to the
// pick score, so one long-winded row does not always win.
const richnessCap = 160

// ChooseBest picks the single most presentable place from a result list:
// the one with the most to say about itself. A category named in the
// utterance ("ช่วยเลือกคาเฟ่ให้หน่อย") restricts the pick to candidates in
// that category's allow-list; when none match, the whole list stays
// eligible. Ties keep the earlier, higher ranked candidate.
func ChooseBest(utterance string, places []storage.Place) (storage.Place, bool) {
	if len(places) == 0 {
		return storage.Place{}, false
	}

	pool := places
	if cat, ok := lexicon.FirstCategoryMention(utterance); ok {
		matched := make([]storage.Place, 0, len(places))
		for i := range places {
			if lexicon.MatchesAllowList(cat, places[i].Category+" "+places[i].Name) {
				matched = append(matched, places[i])
			}
		}
		if len(matched) > 0 {
			pool = matched
		}
	}

	best := 0
	bestScore := -1
	for i := range pool {
		if s := pickScore(&pool[i]); s > bestScore {
			best = i
			bestScore = s
		}
	}
	return pool[best], true
}

func pickScore(p *storage.Place) int {
	score := len([]rune(p.Description)) + len([]rune(p.Highlight))
	if score > richnessCap {
		score = richnessCap
	}
	if p.HasImage() {
		score += 40
	}
	return score
}

// ChooseReply renders the templated pick announcement.
func ChooseReply(p storage.Place) string {
	reply := fmt.Sprintf("ถ้าให้เลือก ขอแนะนำ %s", p.Name)
	if p.Tambon != "" {
		reply += fmt.Sprintf(" ที่ตำบล%s", p.Tambon)
	}
	if p.Highlight != "" {
		reply += fmt.Sprintf(" จุดเด่นคือ%s", p.Highlight)
	} else if p.Description != "" {
		reply += " " + p.Description
	}
	return reply
}
