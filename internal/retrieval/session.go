package retrieval

import (
	"sync"

	"github.com/triptech-ai/pathio-guide/internal/convo"
	"github.com/triptech-ai/pathio-guide/internal/intent"
	"github.com/triptech-ai/pathio-guide/internal/storage"
)

// maxStoredHistory bounds the per-session transcript kept in memory. The
// classifier prompt only ever sees the configured window of it.
const maxStoredHistory = 40

// Session is the per-conversation state the engine reads and writes: the
// transcript, the last result set, the place in focus and the accumulated
// category bans. Bans only grow within a session. Engine.Answer holds mu for
// the whole turn, so concurrent requests on one session run one at a time.
type Session struct {
	ID          string
	History     []convo.Message
	LastResults []storage.Place
	Focused     *storage.Place
	Bans        []string

	mu sync.Mutex

	// lastIntent lets a pure-ban turn re-run the previous search with the
	// rejected category excluded.
	lastIntent *intent.Intent
}

// remember appends a user/assistant exchange to the transcript.
func (s *Session) remember(userText, assistantText string) {
	s.History = append(s.History,
		convo.Message{Role: convo.RoleUser, Text: userText},
		convo.Message{Role: convo.RoleAssistant, Text: assistantText},
	)
	if len(s.History) > maxStoredHistory {
		s.History = s.History[len(s.History)-maxStoredHistory:]
	}
}

// lastCategories returns the raw category strings of the last result set.
func (s *Session) lastCategories() []string {
	out := make([]string, 0, len(s.LastResults))
	for i := range s.LastResults {
		out = append(out, s.LastResults[i].Category)
	}
	return out
}

// SessionStore keeps sessions in memory, keyed by ID. Safe for concurrent
// handlers.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating it on first use.
func (st *SessionStore) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		return s
	}
	s := &Session{ID: id}
	st.sessions[id] = s
	return s
}

// Delete removes a session.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}
