package retrieval

import (
	"context"
	"fmt"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/triptech-ai/pathio-guide/internal/convo"
	"github.com/triptech-ai/pathio-guide/internal/lexicon"
	"github.com/triptech-ai/pathio-guide/internal/storage"
)

// Fixed follow-up phrasings.
const (
	replyNotRecorded  = "ส่วนนี้ยังไม่มีข้อมูลบันทึกไว้ ขอโทษด้วยนะคะ"
	replyWhichPlace   = "หมายถึงที่ไหนเหรอคะ ลองบอกชื่อร้านหรือสถานที่อีกทีได้ไหม"
	replyNoCoordinate = "ยังไม่มีพิกัดของที่นี่บันทึกไว้เลยค่ะ"
)

// resolveFocused figures out which place a follow-up turn refers to. A name
// spoken in the utterance wins over the session focus, the session focus wins
// over a lone last result, and as a last resort the store is searched by the
// utterance with the chatter stripped off. Returns nil when nothing resolves
// confidently.
func resolveFocused(ctx context.Context, store storage.PlaceStore, sess *Session, utterance string) (*storage.Place, error) {
	for i := range sess.LastResults {
		if strings.Contains(utterance, sess.LastResults[i].Name) {
			return &sess.LastResults[i], nil
		}
	}

	if sess.Focused != nil {
		return sess.Focused, nil
	}
	if len(sess.LastResults) == 1 {
		return &sess.LastResults[0], nil
	}

	fragment := stripChatter(utterance)
	if len([]rune(fragment)) < 2 {
		return nil, nil
	}
	candidates, err := store.FindByName(ctx, fragment, 5)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	best := 0
	bestScore := -1
	for i := range candidates {
		if s := fuzzy.PartialRatio(strings.ToLower(fragment), strings.ToLower(candidates[i].Name)); s > bestScore {
			best = i
			bestScore = s
		}
	}
	return &candidates[best], nil
}

// stripChatter removes place references and aspect question words, leaving
// whatever might be a place name.
func stripChatter(utterance string) string {
	s := strings.TrimSpace(utterance)
	for _, ref := range lexicon.PlaceRefPhrases {
		s = strings.ReplaceAll(s, ref, " ")
	}
	for _, q := range []string{
		"จุดเด่น", "เด่นอะไร", "เด่นยังไง", "พิเศษอะไร", "เด็ดอะไร",
		"เปิดกี่โมง", "ปิดกี่โมง", "เวลาเปิด", "เปิดไหม", "เปิดยัง",
		"ราคา", "กี่บาท", "แพงไหม", "ถูกไหม",
		"อยู่ไหน", "อยู่ที่ไหน", "อยู่ตรงไหน", "ไปยังไง", "ไปทางไหน", "แผนที่", "พิกัด",
	} {
		s = strings.ReplaceAll(s, q, " ")
	}
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// AnswerAspects answers the asked sub-questions strictly from stored fields.
// Nothing is invented: an absent field is reported as not recorded. Hours and
// prices are not part of the schema, so those always come back as not
// recorded rather than a guess.
func AnswerAspects(p *storage.Place, aspects convo.Aspects) string {
	var parts []string

	if aspects.Highlight {
		switch {
		case p.Highlight != "":
			parts = append(parts, fmt.Sprintf("จุดเด่นของ%s คือ%s", p.Name, p.Highlight))
		case p.Description != "":
			parts = append(parts, fmt.Sprintf("%s %s", p.Name, p.Description))
		default:
			parts = append(parts, replyNotRecorded)
		}
	}
	if aspects.Hours {
		parts = append(parts, "เวลาเปิดปิด"+replyNotRecorded)
	}
	if aspects.Price {
		parts = append(parts, "เรื่องราคา"+replyNotRecorded)
	}
	if aspects.Location {
		parts = append(parts, MapReply(p))
	}

	if len(parts) == 0 {
		return replyNotRecorded
	}
	return strings.Join(parts, " ")
}

// MapReply renders the location answer for a place: a maps link when the row
// has coordinates, the tambon when it only has that, and an honest no-data
// reply otherwise.
func MapReply(p *storage.Place) string {
	if p.HasCoordinates() {
		link := fmt.Sprintf("https://www.google.com/maps?q=%f,%f",
			p.Latitude.Float64, p.Longitude.Float64)
		if p.Tambon != "" {
			return fmt.Sprintf("%s อยู่ที่ตำบล%s ดูแผนที่ได้ที่ %s", p.Name, p.Tambon, link)
		}
		return fmt.Sprintf("%s ดูแผนที่ได้ที่ %s", p.Name, link)
	}
	if p.Tambon != "" {
		return fmt.Sprintf("%s อยู่ที่ตำบล%s แต่%s", p.Name, p.Tambon, replyNoCoordinate)
	}
	return replyNoCoordinate
}
