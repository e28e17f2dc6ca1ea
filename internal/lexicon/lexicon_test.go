package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCategory(t *testing.T) {
	cat, ok := ResolveCategory("คาเฟ่")
	require.True(t, ok)
	assert.Equal(t, CategoryCafe, cat)

	// Loose values resolve through the allow-lists.
	cat, ok = ResolveCategory("ร้านกาแฟ")
	require.True(t, ok)
	assert.Equal(t, CategoryCafe, cat)

	cat, ok = ResolveCategory("โฮมสเตย์")
	require.True(t, ok)
	assert.Equal(t, CategoryLodging, cat)

	_, ok = ResolveCategory("สนามบิน")
	assert.False(t, ok)
	_, ok = ResolveCategory("")
	assert.False(t, ok)
}

func TestTriggerCategory(t *testing.T) {
	cat, ok := TriggerCategory("หิวมากเลย")
	require.True(t, ok)
	assert.Equal(t, CategoryRestaurant, cat)

	cat, ok = TriggerCategory("อยากไหว้พระทำบุญ")
	require.True(t, ok)
	assert.Equal(t, CategoryTemple, cat)

	_, ok = TriggerCategory("สวัสดีครับ")
	assert.False(t, ok)
}

func TestFirstCategoryMentionPositionWins(t *testing.T) {
	// Table order would say cafe; position says market.
	cat, ok := FirstCategoryMention("ตลาดหรือคาเฟ่ก็ได้")
	require.True(t, ok)
	assert.Equal(t, CategoryMarket, cat)

	_, ok = FirstCategoryMention("สวัสดี")
	assert.False(t, ok)
}

func TestCategoryMentionsOrderedAndDeduped(t *testing.T) {
	cats := CategoryMentions("ไม่เอาคาเฟ่ เอาตลาดดีกว่า ตลาดนัดก็ได้")
	assert.Equal(t, []Category{CategoryCafe, CategoryMarket}, cats)

	assert.Empty(t, CategoryMentions("สวัสดี"))
}

func TestTambonInText(t *testing.T) {
	assert.Equal(t, "บางสน", TambonInText("หาร้านอาหารแถวบางสนหน่อย"))
	assert.Empty(t, TambonInText("หาร้านอาหารหน่อย"))
}

func TestMatchesAllowList(t *testing.T) {
	assert.True(t, MatchesAllowList(CategoryCafe, "เบเกอรี่ บ้านขนมปัง"))
	assert.True(t, MatchesAllowList(CategoryAttraction, "จุดชมวิวเขาไชยราช"))
	assert.False(t, MatchesAllowList(CategoryGym, "คาเฟ่ริมทะเล"))
}

func TestNormalizeDropsNoiseTokens(t *testing.T) {
	tokens := Normalize("หาคาเฟ่ ครับ, วิวทะเล")
	assert.Equal(t, []string{"หาคาเฟ่", "วิวทะเล"}, tokens)
}

func TestExpandKeywordsExtractsEmbeddedVocabulary(t *testing.T) {
	// Thai has no spaces: the category word has to be dug out of the token.
	got := ExpandKeywords("หาคาเฟ่ให้หน่อย", "")
	assert.Contains(t, got, "คาเฟ่")
	assert.Contains(t, got, "กาแฟ")
	assert.Contains(t, got, "หาคาเฟ่ให้หน่อย")
}

func TestExpandKeywordsStripsPrefixes(t *testing.T) {
	got := ExpandKeywords("", "ร้านกาแฟ")
	assert.Contains(t, got, "กาแฟ")
	assert.Contains(t, got, "ร้านกาแฟ")
	// Direct synonyms of the classifier keyword ride along.
	assert.Contains(t, got, "คาเฟ่")
}

func TestExpandKeywordsSortedAndDeduplicated(t *testing.T) {
	got := ExpandKeywords("กาแฟ กาแฟ", "กาแฟ")
	seen := make(map[string]struct{})
	for i, kw := range got {
		_, dup := seen[kw]
		assert.False(t, dup, "duplicate keyword %q", kw)
		seen[kw] = struct{}{}
		if i > 0 {
			assert.LessOrEqual(t, got[i-1], kw)
		}
	}
}

func TestExpandKeywordsEmpty(t *testing.T) {
	assert.Empty(t, ExpandKeywords("", ""))
	assert.Empty(t, ExpandKeywords("ๆ", ""))
}
