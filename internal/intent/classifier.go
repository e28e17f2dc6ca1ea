// Package intent turns a raw utterance into a structured search intent. The
// language model proposes, the local lexicon disposes: every model output is
// validated against the district's categories and tambons, and a trigger-word
// pass can force a search the model missed. The classifier never fails a
// turn; a dead or incoherent model degrades to an empty intent.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/triptech-ai/pathio-guide/internal/lexicon"
	"github.com/triptech-ai/pathio-guide/internal/llm"
	"github.com/triptech-ai/pathio-guide/internal/observability"
)

// Intent is the structured reading of one utterance.
type Intent struct {
	WantsSearch bool
	Category    string
	Tambon      string
	Keywords    []string
}

// Classifier extracts intents using a language model plus local validation.
type Classifier struct {
	model llm.Model
	log   *observability.Logger
}

// NewClassifier creates a classifier. A nil model is allowed; classification
// then runs on the local trigger table alone.
func NewClassifier(model llm.Model, log *observability.Logger) *Classifier {
	if log == nil {
		log = observability.Nop()
	}
	return &Classifier{model: model, log: log}
}

// classifierPayload is the JSON shape the model is instructed to emit.
type classifierPayload struct {
	WantSearch bool   `json:"want_search"`
	Category   string `json:"category"`
	Tambon     string `json:"tambon"`
	Keywords   string `json:"keywords"`
}

const classifierPromptTmpl = `คุณคือตัวช่วยวิเคราะห์ข้อความของผู้ใช้ที่กำลังหาสถานที่ในอำเภอปะทิว จังหวัดชุมพร
วิเคราะห์ข้อความล่าสุดของผู้ใช้ แล้วตอบเป็น JSON เท่านั้น ห้ามมีข้อความอื่น

รูปแบบ: {"want_search": true/false, "category": "...", "tambon": "...", "keywords": "..."}

- want_search: ผู้ใช้ต้องการหาสถานที่หรือไม่
- category: หมวดหมู่จากรายการนี้เท่านั้น ถ้าไม่เข้าให้เว้นว่าง: %s
- tambon: ชื่อตำบลจากรายการนี้เท่านั้น และต้องปรากฏในข้อความจริง ถ้าไม่มีให้เว้นว่าง: %s
- keywords: คำสำคัญสั้นๆ คั่นด้วยช่องว่าง

บทสนทนาก่อนหน้า:
%s

ข้อความล่าสุด: %s`

// buildPrompt renders the classification prompt.
func (c *Classifier) buildPrompt(utterance, history string) string {
	cats := make([]string, 0, len(lexicon.Categories()))
	for _, cat := range lexicon.Categories() {
		cats = append(cats, string(cat))
	}
	if history == "" {
		history = "(ไม่มี)"
	}
	return fmt.Sprintf(classifierPromptTmpl,
		strings.Join(cats, " "),
		strings.Join(lexicon.KnownTambons(), " "),
		history, utterance,
	)
}

// Classify reads the utterance into an Intent. The returned intent is always
// usable; model failures and malformed replies degrade to the local pass.
func (c *Classifier) Classify(ctx context.Context, utterance, history string) Intent {
	var payload classifierPayload

	if c.model != nil {
		raw, err := c.model.GenerateText(ctx, c.buildPrompt(utterance, history))
		if err != nil {
			c.log.Warn().Err(err).Msg("intent model call failed, falling back to local rules")
		} else if err := json.Unmarshal([]byte(llm.StripCodeFence(raw)), &payload); err != nil {
			c.log.Warn().Err(err).Str("raw", raw).Msg("intent reply was not valid JSON, falling back to local rules")
			payload = classifierPayload{}
		}
	}

	out := Intent{WantsSearch: payload.WantSearch}

	// The model only picks from the canonical list; anything else is noise.
	if cat, ok := lexicon.ResolveCategory(payload.Category); ok {
		out.Category = string(cat)
	}

	// A trigger word forces a search even when the model said otherwise,
	// and supplies the category if the model left it open.
	if cat, ok := lexicon.TriggerCategory(utterance); ok {
		out.WantsSearch = true
		if out.Category == "" {
			out.Category = string(cat)
		}
	}

	// Tambons are text-anchored: a known tambon counts only when the
	// utterance literally contains it. Hallucinated locations are dropped
	// and replaced by whatever the text itself mentions.
	if lexicon.IsKnownTambon(payload.Tambon) && strings.Contains(utterance, payload.Tambon) {
		out.Tambon = payload.Tambon
	} else {
		out.Tambon = lexicon.TambonInText(utterance)
	}

	out.Keywords = lexicon.ExpandKeywords(utterance, payload.Keywords)
	return out
}
