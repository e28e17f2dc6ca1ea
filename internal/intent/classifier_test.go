package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/triptech-ai/pathio-guide/internal/llm"
)

func TestClassifyParsesModelJSON(t *testing.T) {
	model := llm.NewMockModel()
	model.Default = `{"want_search": true, "category": "คาเฟ่", "tambon": "", "keywords": "กาแฟ วิวทะเล"}`
	c := NewClassifier(model, nil)

	got := c.Classify(context.Background(), "อยากได้ร้านกาแฟวิวทะเล", "")
	assert.True(t, got.WantsSearch)
	assert.Equal(t, "คาเฟ่", got.Category)
	assert.Empty(t, got.Tambon)
	assert.Contains(t, got.Keywords, "กาแฟ")
}

func TestClassifyStripsCodeFence(t *testing.T) {
	model := llm.NewMockModel()
	model.Default = "```json\n{\"want_search\": true, \"category\": \"ตลาด\", \"tambon\": \"\", \"keywords\": \"\"}\n```"
	c := NewClassifier(model, nil)

	got := c.Classify(context.Background(), "แถวนี้มีตลาดนัดไหม", "")
	assert.True(t, got.WantsSearch)
	assert.Equal(t, "ตลาด", got.Category)
}

func TestClassifyDegradesOnModelError(t *testing.T) {
	model := llm.NewMockModel()
	model.Err = errors.New("quota exceeded")
	c := NewClassifier(model, nil)

	// The model is down but the trigger table still recognizes a search.
	got := c.Classify(context.Background(), "หาคาเฟ่ให้หน่อย", "")
	assert.True(t, got.WantsSearch)
	assert.Equal(t, "คาเฟ่", got.Category)

	// Without a trigger word either, the intent is simply empty.
	got = c.Classify(context.Background(), "สวัสดีครับ", "")
	assert.False(t, got.WantsSearch)
	assert.Empty(t, got.Category)
}

func TestClassifyDegradesOnMalformedJSON(t *testing.T) {
	model := llm.NewMockModel()
	model.Default = "ขอโทษค่ะ ช่วยไม่ได้"
	c := NewClassifier(model, nil)

	got := c.Classify(context.Background(), "อยากกินข้าว มีร้านอาหารแนะนำไหม", "")
	assert.True(t, got.WantsSearch)
	assert.Equal(t, "ร้านอาหาร", got.Category)
}

func TestClassifyTriggerOverridesModelNo(t *testing.T) {
	model := llm.NewMockModel()
	model.Default = `{"want_search": false, "category": "", "tambon": "", "keywords": ""}`
	c := NewClassifier(model, nil)

	got := c.Classify(context.Background(), "อยากเที่ยววัดแถวนี้", "")
	assert.True(t, got.WantsSearch)
	assert.Equal(t, "วัด", got.Category)
}

func TestClassifyRejectsUnknownCategory(t *testing.T) {
	model := llm.NewMockModel()
	model.Default = `{"want_search": true, "category": "สวนสนุก", "tambon": "", "keywords": ""}`
	c := NewClassifier(model, nil)

	got := c.Classify(context.Background(), "มีอะไรน่าสนใจบ้าง", "")
	assert.Empty(t, got.Category)
}

func TestClassifyTambonIsTextAnchored(t *testing.T) {
	// The model names a real tambon the user never typed.
	model := llm.NewMockModel()
	model.Default = `{"want_search": true, "category": "คาเฟ่", "tambon": "ชุมโค", "keywords": ""}`
	c := NewClassifier(model, nil)

	got := c.Classify(context.Background(), "หาคาเฟ่หน่อย", "")
	assert.Empty(t, got.Tambon)

	// When the text actually carries it, it sticks.
	got = c.Classify(context.Background(), "หาคาเฟ่แถวชุมโค", "")
	assert.Equal(t, "ชุมโค", got.Tambon)
}

func TestClassifyTambonFromTextBeatsModelMiss(t *testing.T) {
	model := llm.NewMockModel()
	model.Default = `{"want_search": true, "category": "ร้านอาหาร", "tambon": "", "keywords": ""}`
	c := NewClassifier(model, nil)

	got := c.Classify(context.Background(), "ร้านอาหารที่บางสนมีไหม", "")
	assert.Equal(t, "บางสน", got.Tambon)
}

func TestClassifyNilModelUsesLocalRules(t *testing.T) {
	c := NewClassifier(nil, nil)

	got := c.Classify(context.Background(), "หาที่พักแถวทะเลทรัพย์", "")
	assert.True(t, got.WantsSearch)
	assert.Equal(t, "ที่พัก", got.Category)
	assert.Equal(t, "ทะเลทรัพย์", got.Tambon)
}
