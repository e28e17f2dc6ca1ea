package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triptech-ai/pathio-guide/internal/config"
	"github.com/triptech-ai/pathio-guide/internal/intent"
	"github.com/triptech-ai/pathio-guide/internal/observability"
	"github.com/triptech-ai/pathio-guide/internal/retrieval"
	"github.com/triptech-ai/pathio-guide/internal/storage"
)

func newTestHandler(t *testing.T) *ChatHandler {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, storage.EnsureSchema(ctx, db, "sqlite"))
	require.NoError(t, storage.InsertPlace(ctx, db, storage.Place{
		Name: "คาเฟ่ชมคลื่น", Tambon: "ชุมโค", Category: "คาเฟ่",
		Description: "ร้านกาแฟริมทะเล", Highlight: "กาแฟดริปและขนมโฮมเมด",
	}))

	engine := retrieval.NewEngine(
		storage.NewPlaceRepository(db),
		intent.NewClassifier(nil, nil),
		nil,
		nil,
		config.DefaultConfig().Retrieval,
		observability.Nop(),
	)
	return NewChatHandler(observability.Nop(), engine, retrieval.NewSessionStore())
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

func TestChatAssignsSessionAndAnswers(t *testing.T) {
	h := newTestHandler(t)

	rec := postChat(t, h, `{"message": "หาคาเฟ่ให้หน่อย"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res ChatResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, "new_search", res.Mode)
	require.Len(t, res.Places, 1)
	assert.Equal(t, "คาเฟ่ชมคลื่น", res.Places[0].Name)
}

func TestChatKeepsSessionState(t *testing.T) {
	h := newTestHandler(t)

	rec := postChat(t, h, `{"message": "หาคาเฟ่ให้หน่อย"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var first ChatResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	// A follow-up in the same session resolves against the earlier result.
	rec = postChat(t, h, `{"sessionId": "`+first.SessionID+`", "message": "ที่นี่เด่นอะไร"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var second ChatResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, "followup", second.Mode)
	assert.Contains(t, second.Reply, "กาแฟดริปและขนมโฮมเมด")
}

func TestChatRejectsBadRequests(t *testing.T) {
	h := newTestHandler(t)

	rec := postChat(t, h, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postChat(t, h, `{"message": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
