package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triptech-ai/pathio-guide/internal/storage"
)

func TestFilterByCategoryKeepsAllowListMatches(t *testing.T) {
	places := []storage.Place{
		{Name: "คาเฟ่ชมคลื่น", Category: "คาเฟ่"},
		{Name: "บ้านขนมปังปะทิว", Category: "เบเกอรี่"},
		{Name: "ครัวบางสน", Category: "ร้านอาหาร"},
	}

	kept, fellBack := FilterByCategory(places, "คาเฟ่")
	assert.False(t, fellBack)
	// The bakery passes the cafe allow-list even though its tag differs.
	require.Len(t, kept, 2)
	assert.Equal(t, "คาเฟ่ชมคลื่น", kept[0].Name)
	assert.Equal(t, "บ้านขนมปังปะทิว", kept[1].Name)
}

func TestFilterByCategoryFallsBackInsteadOfEmptying(t *testing.T) {
	places := []storage.Place{
		{Name: "ครัวบางสน", Category: "ร้านอาหาร"},
		{Name: "ตลาดนัดปากคลอง", Category: "ตลาด"},
	}

	kept, fellBack := FilterByCategory(places, "ยิม")
	assert.True(t, fellBack)
	assert.Equal(t, places, kept)
}

func TestFilterByCategoryIgnoresUnknownCategory(t *testing.T) {
	places := []storage.Place{{Name: "ครัวบางสน", Category: "ร้านอาหาร"}}

	kept, fellBack := FilterByCategory(places, "")
	assert.False(t, fellBack)
	assert.Equal(t, places, kept)
}

func TestKeywordGateIsStrict(t *testing.T) {
	places := []storage.Place{
		{Name: "คาเฟ่ชมคลื่น", Highlight: "กาแฟดริปริมทะเล"},
		{Name: "ครัวบางสน", Description: "อาหารทะเลสด"},
	}

	kept := KeywordGate(places, []string{"กาแฟ"})
	require.Len(t, kept, 1)
	assert.Equal(t, "คาเฟ่ชมคลื่น", kept[0].Name)

	// A gate that matches nothing empties the list; that is the signal for
	// the relaxation stage, not an error.
	assert.Empty(t, KeywordGate(places, []string{"ก๋วยเตี๋ยว"}))

	// No keywords, no gate.
	assert.Equal(t, places, KeywordGate(places, nil))
}

func TestChooseBestPrefersRichestRecord(t *testing.T) {
	places := []storage.Place{
		{Name: "ร้านเงียบๆ", Category: "คาเฟ่"},
		{
			Name: "คาเฟ่ชมคลื่น", Category: "คาเฟ่",
			Description: "ร้านกาแฟริมทะเล วิวสวย นั่งได้ทั้งวัน",
			Highlight:   "กาแฟดริปและขนมโฮมเมด",
			ImageURL:    "https://img.example/a.jpg",
		},
	}

	best, ok := ChooseBest("ช่วยเลือกให้หน่อย", places)
	require.True(t, ok)
	assert.Equal(t, "คาเฟ่ชมคลื่น", best.Name)

	reply := ChooseReply(best)
	assert.Contains(t, reply, "คาเฟ่ชมคลื่น")
	assert.Contains(t, reply, "กาแฟดริปและขนมโฮมเมด")
}

func TestChooseBestHonorsNamedCategory(t *testing.T) {
	places := []storage.Place{
		{
			Name: "ครัวบางสน", Category: "ร้านอาหาร",
			Description: "อาหารทะเลสดจากเรือประมง นั่งริมน้ำ บรรยากาศดีมาก เมนูเยอะ",
			Highlight:   "ปูม้านึ่งและกุ้งแม่น้ำเผา",
			ImageURL:    "https://img.example/b.jpg",
		},
		{Name: "คาเฟ่ชมคลื่น", Category: "คาเฟ่", Highlight: "กาแฟดริป"},
	}

	// The named category wins over a richer off-category record.
	best, ok := ChooseBest("ช่วยเลือกคาเฟ่ให้หน่อย", places)
	require.True(t, ok)
	assert.Equal(t, "คาเฟ่ชมคลื่น", best.Name)

	// With no candidate in the named category, the whole list stays eligible.
	best, ok = ChooseBest("ช่วยเลือกวัดให้หน่อย", places)
	require.True(t, ok)
	assert.Equal(t, "ครัวบางสน", best.Name)
}

func TestChooseBestEmpty(t *testing.T) {
	_, ok := ChooseBest("เลือกให้หน่อย", nil)
	assert.False(t, ok)
}

func TestChooseBestTieKeepsRankOrder(t *testing.T) {
	places := []storage.Place{
		{Name: "ร้านแรก", Category: "คาเฟ่"},
		{Name: "ร้านสอง", Category: "คาเฟ่"},
	}
	best, ok := ChooseBest("เลือกให้หน่อย", places)
	require.True(t, ok)
	assert.Equal(t, "ร้านแรก", best.Name)
}
