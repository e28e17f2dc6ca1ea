package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	fenced := "```json\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, StripCodeFence(fenced))

	bare := "```\nhello\n```"
	assert.Equal(t, "hello", StripCodeFence(bare))

	plain := `{"a": 1}`
	assert.Equal(t, plain, StripCodeFence(plain))

	assert.Equal(t, "", StripCodeFence("   "))
}

func TestMockModelRules(t *testing.T) {
	m := NewMockModel().
		Reply("น้ำตก", "ไปน้ำตกกันเถอะ").
		Reply("คาเฟ่", "ลองคาเฟ่ชมคลื่นดูนะ")
	m.Default = "ว่าไงคะ"

	got, err := m.GenerateText(context.Background(), "แนะนำคาเฟ่หน่อย")
	require.NoError(t, err)
	assert.Equal(t, "ลองคาเฟ่ชมคลื่นดูนะ", got)

	got, err = m.GenerateText(context.Background(), "สวัสดี")
	require.NoError(t, err)
	assert.Equal(t, "ว่าไงคะ", got)
}

func TestMockModelErr(t *testing.T) {
	m := NewMockModel()
	m.Err = errors.New("quota")

	_, err := m.GenerateText(context.Background(), "อะไรก็ได้")
	assert.Error(t, err)
}

func TestMockModelNoMatchNoDefault(t *testing.T) {
	_, err := NewMockModel().GenerateText(context.Background(), "อะไรก็ได้")
	assert.ErrorIs(t, err, ErrUnavailable)
}
