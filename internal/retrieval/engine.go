// Package retrieval implements the conversational place-finding pipeline:
// turn mode dispatch, candidate retrieval with two-stage relaxation, fuzzy
// ranking, category and keyword filtering, the choose-for-me picker and the
// follow-up responders. The engine is deliberately honest: replies are
// grounded on stored rows only, and a turn the data cannot answer says so.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/triptech-ai/pathio-guide/internal/cache"
	"github.com/triptech-ai/pathio-guide/internal/config"
	"github.com/triptech-ai/pathio-guide/internal/convo"
	"github.com/triptech-ai/pathio-guide/internal/intent"
	"github.com/triptech-ai/pathio-guide/internal/lexicon"
	"github.com/triptech-ai/pathio-guide/internal/llm"
	"github.com/triptech-ai/pathio-guide/internal/observability"
	"github.com/triptech-ai/pathio-guide/internal/storage"
)

// resultCacheTTL is how long raw store rows for a flat search stay cached
// when the config does not set retrieval.cache_ttl.
const resultCacheTTL = 5 * time.Minute

// relaxRadiusFactor widens the nearby radius on the second retrieval stage.
const relaxRadiusFactor = 1.25

// Fixed engine replies.
const (
	replyEmptyTurn       = "พิมพ์มาได้เลยนะคะ อยากหาที่กิน ที่เที่ยว หรือที่พักในปะทิว"
	replyNothingToChoose = "ยังไม่มีรายการให้เลือกเลยค่ะ ลองบอกก่อนว่าอยากได้ที่แบบไหน เดี๋ยวหาให้"
	replyNoMatch         = "ขอโทษด้วยนะคะ ยังไม่เจอที่ที่ตรงกับที่ขอเลย ลองเปลี่ยนคำค้นหรือบอกตำบลอื่นดูไหมคะ"
	replyChitChat        = "สวัสดีค่ะ อยากหาคาเฟ่ ร้านอาหาร ที่เที่ยว หรือที่พักในอำเภอปะทิว บอกได้เลยนะคะ"
)

// Location is an optional user position for nearby search.
type Location struct {
	Latitude  float64
	Longitude float64
}

// TurnResult is what one conversational turn produces.
type TurnResult struct {
	Reply  string          `json:"reply"`
	Mode   convo.Mode      `json:"mode"`
	Places []storage.Place `json:"places,omitempty"`
	Bans   []string        `json:"banned_categories,omitempty"`
}

// Engine runs the full pipeline over a place store, an intent classifier and
// an optional phrasing model. A nil model degrades every reply to its fixed
// template; a nil cache disables result caching. Store errors are the only
// failures a turn surfaces.
type Engine struct {
	store      storage.PlaceStore
	classifier *intent.Classifier
	model      llm.Model
	cache      cache.Client
	cfg        config.RetrievalConfig
	log        *observability.Logger
}

// NewEngine wires an engine together.
func NewEngine(store storage.PlaceStore, classifier *intent.Classifier, model llm.Model,
	cacheClient cache.Client, cfg config.RetrievalConfig, log *observability.Logger) *Engine {
	if log == nil {
		log = observability.Nop()
	}
	return &Engine{
		store:      store,
		classifier: classifier,
		model:      model,
		cache:      cacheClient,
		cfg:        cfg,
		log:        log,
	}
}

// Answer handles one turn for a session. Turns on the same session are
// serialized; concurrent callers block until the previous turn finishes.
// Ban detection runs on every turn regardless of mode, so "ไม่เอาตลาดแล้ว"
// in the middle of a follow-up still sticks for the rest of the session.
func (e *Engine) Answer(ctx context.Context, sess *Session, utterance string, loc *Location) (TurnResult, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return TurnResult{Reply: replyEmptyTurn, Mode: convo.ModeChitChat}, nil
	}

	newBans := convo.ResolveBans(utterance, sess.lastCategories())
	sess.Bans = convo.MergeBans(sess.Bans, newBans)

	mode := convo.DetectMode(utterance, convo.SessionView{
		HasFocusedPlace: sess.Focused != nil,
	})

	log := e.log.WithSession(sess.ID)
	log.Debug().Str("mode", string(mode)).Strs("bans", sess.Bans).Msg("turn dispatched")

	var res TurnResult
	var err error
	switch mode {
	case convo.ModeChooseFromLast:
		res = e.choose(sess, utterance)
	case convo.ModeFollowup, convo.ModeMapRequest:
		res, err = e.followup(ctx, sess, utterance, mode)
	default:
		res, err = e.search(ctx, sess, utterance, loc, len(newBans) > 0)
	}
	if err != nil {
		return TurnResult{}, err
	}

	sess.remember(utterance, res.Reply)
	res.Bans = append([]string(nil), sess.Bans...)
	return res, nil
}

// choose picks the best candidate from the last result set. With nothing to
// pick from, the reply says so; no retrieval happens either way.
func (e *Engine) choose(sess *Session, utterance string) TurnResult {
	if len(sess.LastResults) == 0 {
		return TurnResult{Reply: replyNothingToChoose, Mode: convo.ModeChooseFromLast}
	}

	best, _ := ChooseBest(utterance, sess.LastResults)
	sess.Focused = &best
	return TurnResult{
		Reply:  ChooseReply(best),
		Mode:   convo.ModeChooseFromLast,
		Places: []storage.Place{best},
	}
}

// followup answers an aspect question about the focused place.
func (e *Engine) followup(ctx context.Context, sess *Session, utterance string, mode convo.Mode) (TurnResult, error) {
	place, err := resolveFocused(ctx, e.store, sess, utterance)
	if err != nil {
		return TurnResult{}, err
	}
	if place == nil {
		return TurnResult{Reply: replyWhichPlace, Mode: mode}, nil
	}
	sess.Focused = place

	var reply string
	if mode == convo.ModeMapRequest {
		reply = MapReply(place)
	} else {
		reply = AnswerAspects(place, convo.DetectAspects(utterance))
	}
	return TurnResult{Reply: reply, Mode: mode, Places: []storage.Place{*place}}, nil
}

// search runs the retrieval pipeline: classify, retrieve, rank, filter, and
// relax once before giving up. banTurn marks that this utterance added a ban;
// such a turn re-runs the previous search with the ban applied even when the
// classifier saw no fresh search request in it.
func (e *Engine) search(ctx context.Context, sess *Session, utterance string, loc *Location, banTurn bool) (TurnResult, error) {
	it := e.classifier.Classify(ctx, utterance, convo.FlattenHistory(sess.History, e.cfg.HistoryWindow))

	if banTurn {
		it = e.rebuildBannedIntent(it, sess, utterance)
	} else if !it.WantsSearch {
		return e.chitchat(ctx, sess, utterance), nil
	}

	places, err := e.retrieve(ctx, it, sess.Bans, loc, false)
	if err != nil {
		return TurnResult{}, err
	}

	ranked := Rank(places, RankParams{
		Query:     utterance,
		Keywords:  it.Keywords,
		Category:  it.Category,
		Tambon:    it.Tambon,
		Threshold: e.cfg.FuzzyThreshold,
		TopK:      e.cfg.TopK,
	})
	filtered, fellBack := FilterByCategory(ranked, it.Category)
	final := KeywordGate(filtered, it.Keywords)

	if len(final) == 0 {
		// Stage two: drop the keywords and widen the radius.
		relaxed := it
		relaxed.Keywords = nil
		places, err = e.retrieve(ctx, relaxed, sess.Bans, loc, true)
		if err != nil {
			return TurnResult{}, err
		}
		ranked = Rank(places, RankParams{
			Query:     utterance,
			Category:  it.Category,
			Tambon:    it.Tambon,
			Threshold: e.cfg.FuzzyThreshold,
			TopK:      e.cfg.TopK,
		})
		final, fellBack = FilterByCategory(ranked, it.Category)
	}

	li := it
	sess.lastIntent = &li

	if len(final) == 0 {
		return TurnResult{Reply: replyNoMatch, Mode: convo.ModeNewSearch}, nil
	}

	sess.LastResults = final
	sess.Focused = nil
	return TurnResult{
		Reply:  e.phraseResults(ctx, sess, utterance, final, fellBack),
		Mode:   convo.ModeNewSearch,
		Places: final,
	}, nil
}

// rebuildBannedIntent adjusts the classified intent for a turn that just
// banned a category. The trigger table reads "ไม่เอาตลาด" as a market search,
// so a banned category is scrubbed from the intent and the utterance is
// re-scanned for a non-banned replacement ("ไม่เอาคาเฟ่ เอาตลาดดีกว่า");
// when nothing else was asked for, the previous search is re-run instead,
// and when that too is now banned the session just browses whatever remains.
func (e *Engine) rebuildBannedIntent(it intent.Intent, sess *Session, utterance string) intent.Intent {
	it.WantsSearch = true

	banned := func(cat string) bool {
		for _, b := range sess.Bans {
			if cat == b {
				return true
			}
		}
		return false
	}

	if banned(it.Category) {
		it.Category = ""
		it.Keywords = nil
	}

	if it.Category == "" {
		for _, cat := range lexicon.CategoryMentions(utterance) {
			if !banned(string(cat)) {
				it.Category = string(cat)
				break
			}
		}
	}

	if it.Category == "" && sess.lastIntent != nil {
		prev := *sess.lastIntent
		if it.Tambon == "" {
			it.Tambon = prev.Tambon
		}
		if prev.Category != "" && !banned(prev.Category) {
			it.Category = prev.Category
			if len(it.Keywords) == 0 {
				it.Keywords = prev.Keywords
			}
		}
	}
	return it
}

// retrieve pulls candidate rows from the store, applying the session bans.
// Flat searches go through the cache; nearby searches do not, since the user
// position makes every query effectively unique.
func (e *Engine) retrieve(ctx context.Context, it intent.Intent, bans []string, loc *Location, relaxed bool) ([]storage.Place, error) {
	filter := storage.SearchFilter{
		Category:          it.Category,
		Tambon:            it.Tambon,
		KeywordsAny:       it.Keywords,
		ExcludeCategories: bans,
		Limit:             e.cfg.SearchLimit,
	}

	if loc != nil {
		radius := e.cfg.NearbyRadiusKm
		if relaxed {
			radius = math.Ceil(radius * relaxRadiusFactor)
		}
		filter.Limit = e.cfg.NearbyLimit
		return e.store.SearchNearby(ctx, storage.NearbyFilter{
			SearchFilter: filter,
			Latitude:     loc.Latitude,
			Longitude:    loc.Longitude,
			WithinKm:     radius,
		})
	}

	useCache := e.cache != nil && e.cfg.CacheResults
	key := cache.SearchKey(it.Category, it.Tambon,
		strings.Join(it.Keywords, ","), strings.Join(bans, ","))

	if useCache {
		if raw, err := e.cache.Get(ctx, key); err == nil {
			var cached []storage.Place
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	places, err := e.store.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	if useCache {
		ttl := e.cfg.CacheTTL
		if ttl <= 0 {
			ttl = resultCacheTTL
		}
		if raw, err := json.Marshal(places); err == nil {
			if err := e.cache.Set(ctx, key, raw, ttl); err != nil {
				e.log.Warn().Err(err).Msg("failed to cache search results")
			}
		}
	}
	return places, nil
}

// chitchat handles a turn with no search intent.
func (e *Engine) chitchat(ctx context.Context, sess *Session, utterance string) TurnResult {
	reply := replyChitChat
	if e.model != nil {
		prompt := fmt.Sprintf(
			"คุณคือไกด์ท้องถิ่นใจดีของอำเภอปะทิว จังหวัดชุมพร ตอบข้อความนี้สั้นๆ เป็นกันเอง "+
				"แล้วชวนให้ลองถามหาคาเฟ่ ร้านอาหาร ที่เที่ยว หรือที่พักในปะทิว\n\nบทสนทนาก่อนหน้า:\n%s\nผู้ใช้: %s",
			convo.FlattenHistory(sess.History, e.cfg.HistoryWindow), utterance)
		if raw, err := e.model.GenerateText(ctx, prompt); err == nil && strings.TrimSpace(raw) != "" {
			reply = strings.TrimSpace(raw)
		}
	}
	return TurnResult{Reply: reply, Mode: convo.ModeChitChat}
}

// phraseResults turns the final candidate list into a reply. The model gets
// a context block built strictly from stored fields and is told to stay
// inside it; when the model is down the templated listing goes out instead.
func (e *Engine) phraseResults(ctx context.Context, sess *Session, utterance string, places []storage.Place, fellBack bool) string {
	if e.model == nil {
		return templateResults(places, fellBack)
	}

	var block strings.Builder
	for i := range places {
		p := &places[i]
		block.WriteString("- " + p.Name)
		if p.Tambon != "" {
			block.WriteString(" (ตำบล" + p.Tambon + ")")
		}
		if p.Category != "" {
			block.WriteString(" หมวด: " + p.Category)
		}
		if p.Highlight != "" {
			block.WriteString(" จุดเด่น: " + p.Highlight)
		} else if p.Description != "" {
			block.WriteString(" " + p.Description)
		}
		block.WriteString("\n")
	}

	note := ""
	if fellBack {
		note = "หมายเหตุ: ไม่มีที่ตรงหมวดที่ขอเป๊ะๆ รายการนี้คือที่ใกล้เคียงที่สุด บอกผู้ใช้ตามตรงด้วย\n"
	}

	prompt := fmt.Sprintf(
		"คุณคือไกด์ท้องถิ่นใจดีของอำเภอปะทิว จังหวัดชุมพร แนะนำสถานที่จากรายการข้างล่างนี้เท่านั้น "+
			"ห้ามแต่งข้อมูลเพิ่ม ตอบสั้นๆ เป็นกันเอง\n\n%sรายการ:\n%s\nบทสนทนาก่อนหน้า:\n%s\nผู้ใช้: %s",
		note, block.String(),
		convo.FlattenHistory(sess.History, e.cfg.HistoryWindow), utterance)

	raw, err := e.model.GenerateText(ctx, prompt)
	if err != nil || strings.TrimSpace(raw) == "" {
		if err != nil {
			e.log.Warn().Err(err).Msg("phrasing model failed, using template reply")
		}
		return templateResults(places, fellBack)
	}
	return strings.TrimSpace(raw)
}

// templateResults is the fixed-format fallback listing.
func templateResults(places []storage.Place, fellBack bool) string {
	var sb strings.Builder
	if fellBack {
		sb.WriteString("ไม่เจอที่ตรงหมวดเป๊ะๆ แต่มีที่ใกล้เคียงมาฝากค่ะ ")
	}
	sb.WriteString(fmt.Sprintf("เจอ %d ที่ที่น่าสนใจค่ะ:", len(places)))
	for i := range places {
		p := &places[i]
		sb.WriteString("\n- " + p.Name)
		if p.Tambon != "" {
			sb.WriteString(" (ตำบล" + p.Tambon + ")")
		}
		if p.DistanceKm != nil {
			sb.WriteString(fmt.Sprintf(" ห่างประมาณ %.1f กม.", *p.DistanceKm))
		}
	}
	sb.WriteString("\nอยากรู้รายละเอียดที่ไหน ถามต่อได้เลยนะคะ")
	return sb.String()
}
