package memstore

import (
	"context"
	"sort"
	"sync"

	"ember_server/models"
	"ember_server/store"
)

// Store is an in-memory implementation of store.Store. Every method runs
// under one mutex, giving the same per-mutation atomicity the DynamoDB
// backend provides. Used by the test suite and the DB_BACKEND=memory dev
// mode.
type Store struct {
	mu       sync.Mutex
	users    map[string]models.User // by userID
	queue    map[string]models.QueueEntry
	sessions map[string]models.ChatSession
	messages map[string][]models.Message // by sessionID, insertion order
	matches  map[string]models.Match
	requests map[string]models.ChatRequest
	reports  map[string]models.Report
}

func New() *Store {
	return &Store{
		users:    make(map[string]models.User),
		queue:    make(map[string]models.QueueEntry),
		sessions: make(map[string]models.ChatSession),
		messages: make(map[string][]models.Message),
		matches:  make(map[string]models.Match),
		requests: make(map[string]models.ChatRequest),
		reports:  make(map[string]models.Report),
	}
}

var _ store.Store = (*Store)(nil)

// Users

func (s *Store) CreateUser(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByClerkID(_ context.Context, clerkID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ClerkID == clerkID {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, userID string, p models.UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.GenderPreference != nil {
		u.GenderPreference = *p.GenderPreference
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Photos != nil {
		u.Photos = *p.Photos
	}
	if p.PhotoStorageKeys != nil {
		u.PhotoStorageKeys = *p.PhotoStorageKeys
	}
	if p.IsInQueue != nil {
		u.IsInQueue = *p.IsInQueue
	}
	if p.PublicKey != nil {
		u.PublicKey = *p.PublicKey
	}
	if p.UpdatedAt != nil {
		u.UpdatedAt = *p.UpdatedAt
	}
	s.users[userID] = u
	return u, nil
}

func (s *Store) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}

// Matchmaking pending-set

func (s *Store) Enqueue(_ context.Context, e models.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue[e.UserID] = e
	return nil
}

func (s *Store) Dequeue(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queue, userID)
	return nil
}

func (s *Store) ClaimQueueEntry(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.queue[userID]; !ok {
		return false, nil
	}
	delete(s.queue, userID)
	return true, nil
}

func (s *Store) ListQueueEntries(_ context.Context) ([]models.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]models.QueueEntry, 0, len(s.queue))
	for _, e := range s.queue {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].EnqueuedAt < entries[j].EnqueuedAt })
	return entries, nil
}

func (s *Store) IsQueued(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.queue[userID]
	return ok, nil
}

// Chat sessions

func (s *Store) CreateSession(_ context.Context, sess models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.SessionID] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return models.ChatSession{}, store.ErrNotFound
	}
	return sess, nil
}

func (s *Store) PatchSession(_ context.Context, sessionID string, p models.SessionPatch) (models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return models.ChatSession{}, store.ErrNotFound
	}
	sess = applySessionPatch(sess, p)
	s.sessions[sessionID] = sess
	return sess, nil
}

func (s *Store) PatchSessionIfNotEnded(_ context.Context, sessionID string, p models.SessionPatch) (models.ChatSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return models.ChatSession{}, false, store.ErrNotFound
	}
	if sess.Status == models.StatusEnded {
		return sess, false, nil
	}
	sess = applySessionPatch(sess, p)
	s.sessions[sessionID] = sess
	return sess, true, nil
}

func (s *Store) PromoteSession(_ context.Context, sessionID string, p models.SessionPatch) (models.ChatSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return models.ChatSession{}, false, store.ErrNotFound
	}
	if sess.Phase != models.PhaseSpeedDating || sess.Status == models.StatusEnded {
		return sess, false, nil
	}
	sess = applySessionPatch(sess, p)
	s.sessions[sessionID] = sess
	return sess, true, nil
}

func applySessionPatch(sess models.ChatSession, p models.SessionPatch) models.ChatSession {
	if p.Status != nil {
		sess.Status = *p.Status
	}
	if p.Phase != nil {
		sess.Phase = *p.Phase
	}
	if p.User1WantsContinue != nil {
		sess.User1WantsContinue = p.User1WantsContinue
	}
	if p.User2WantsContinue != nil {
		sess.User2WantsContinue = p.User2WantsContinue
	}
	if p.ClearUser1Continue {
		sess.User1WantsContinue = nil
	}
	if p.ClearUser2Continue {
		sess.User2WantsContinue = nil
	}
	if p.User1WantsSkip != nil {
		sess.User1WantsSkip = *p.User1WantsSkip
	}
	if p.User2WantsSkip != nil {
		sess.User2WantsSkip = *p.User2WantsSkip
	}
	if p.User1Typing != nil {
		sess.User1Typing = *p.User1Typing
	}
	if p.User2Typing != nil {
		sess.User2Typing = *p.User2Typing
	}
	if p.User1LastTyping != nil {
		sess.User1LastTyping = *p.User1LastTyping
	}
	if p.User2LastTyping != nil {
		sess.User2LastTyping = *p.User2LastTyping
	}
	if p.RevealStartedAt != nil {
		sess.RevealStartedAt = *p.RevealStartedAt
	}
	if p.ClearRevealStarted {
		sess.RevealStartedAt = 0
	}
	if p.EndedAt != nil {
		sess.EndedAt = *p.EndedAt
	}
	return sess
}

func (s *Store) FindActiveSpeedDatingSession(_ context.Context, userID string) (*models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		// waiting_reveal still binds the user; only ended releases them.
		if sess.HasParticipant(userID) && sess.Phase == models.PhaseSpeedDating && sess.Status != models.StatusEnded {
			found := sess
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) ListSessionsForUser(_ context.Context, userID string) ([]models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ChatSession
	for _, sess := range s.sessions {
		if sess.HasParticipant(userID) {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *Store) ListWaitingRevealBefore(_ context.Context, cutoff int64) ([]models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ChatSession
	for _, sess := range s.sessions {
		if sess.Status == models.StatusWaitingReveal && sess.RevealStartedAt > 0 && sess.RevealStartedAt < cutoff {
			out = append(out, sess)
		}
	}
	return out, nil
}

// Messages

func (s *Store) InsertMessage(_ context.Context, m models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.ChatSessionID] = append(s.messages[m.ChatSessionID], m)
	return nil
}

func (s *Store) ListMessages(_ context.Context, sessionID string, limit int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := sortedByTime(s.messages[sessionID])
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:] // most recent N, still ascending
	}
	return msgs, nil
}

func (s *Store) ListRecentMessages(_ context.Context, sessionID string, limit int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asc := sortedByTime(s.messages[sessionID])
	desc := make([]models.Message, 0, len(asc))
	for i := len(asc) - 1; i >= 0; i-- {
		desc = append(desc, asc[i])
	}
	if len(desc) > limit {
		desc = desc[:limit]
	}
	return desc, nil
}

func (s *Store) DeleteSessionMessages(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, sessionID)
	return nil
}

func (s *Store) DeleteUserMessages(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sessionID, msgs := range s.messages {
		kept := msgs[:0]
		for _, m := range msgs {
			if m.SenderID != userID {
				kept = append(kept, m)
			}
		}
		s.messages[sessionID] = kept
	}
	return nil
}

// Matches

func (s *Store) InsertMatch(_ context.Context, m models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.MatchID] = m
	return nil
}

func (s *Store) GetMatch(_ context.Context, matchID string) (models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return models.Match{}, store.ErrNotFound
	}
	return m, nil
}

func (s *Store) PatchMatch(_ context.Context, matchID string, p models.MatchPatch) (models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return models.Match{}, store.ErrNotFound
	}
	if p.IsActive != nil {
		m.IsActive = p.IsActive
	}
	if p.EndedBy != nil {
		m.EndedBy = *p.EndedBy
	}
	if p.ClearEndedBy {
		m.EndedBy = ""
	}
	if p.LastMessageAt != nil {
		m.LastMessageAt = *p.LastMessageAt
	}
	if p.ChatSessionID != nil {
		m.ChatSessionID = *p.ChatSessionID
	}
	s.matches[matchID] = m
	return m, nil
}

func (s *Store) ListMatchesForUser(_ context.Context, userID string, limit int) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Match
	for _, m := range s.matches {
		if m.HasParticipant(userID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchedAt > out[j].MatchedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) FindMatchBySession(_ context.Context, sessionID string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.ChatSessionID == sessionID {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) DeleteMatch(_ context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, matchID)
	return nil
}

// Chat requests

func (s *Store) InsertChatRequest(_ context.Context, r models.ChatRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.RequestID] = r
	return nil
}

func (s *Store) GetChatRequest(_ context.Context, requestID string) (models.ChatRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return models.ChatRequest{}, store.ErrNotFound
	}
	return r, nil
}

func (s *Store) PatchChatRequest(_ context.Context, requestID string, status string, respondedAt int64) (models.ChatRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return models.ChatRequest{}, store.ErrNotFound
	}
	r.Status = status
	r.RespondedAt = respondedAt
	s.requests[requestID] = r
	return r, nil
}

func (s *Store) ListChatRequestsForUser(_ context.Context, toUserID string, status string) ([]models.ChatRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ChatRequest
	for _, r := range s.requests {
		if r.ToUserID == toUserID && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (s *Store) DeleteRequestsForMatch(_ context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.requests {
		if r.MatchID == matchID {
			delete(s.requests, id)
		}
	}
	return nil
}

// Reports

func (s *Store) InsertReport(_ context.Context, r models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ReportID] = r
	return nil
}

func (s *Store) DeleteReportsByReporter(_ context.Context, reporterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.reports {
		if r.ReporterID == reporterID {
			delete(s.reports, id)
		}
	}
	return nil
}

func sortedByTime(msgs []models.Message) []models.Message {
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out
}
