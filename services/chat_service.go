package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ember_server/models"
	"ember_server/store"
	"ember_server/ws"
)

// ChatService handles messaging inside a session plus the session view
// the chat screen renders from.
type ChatService struct {
	Store     store.Store
	Hub       *ws.Hub
	Decisions *DecisionService
}

// SendInput is one outgoing message.
type SendInput struct {
	SessionID        string `json:"sessionId"`
	Content          string `json:"content"`
	MessageType      string `json:"messageType"`
	ImageKey         string `json:"imageKey"`
	IsEncrypted      bool   `json:"isEncrypted"`
	EncryptedContent string `json:"encryptedContent"`
	Nonce            string `json:"nonce"`
}

// ChatView is everything the chat screen needs in one response. The
// partner profile stays hidden until the extended phase; until then the
// client only knows someone is on the other end.
type ChatView struct {
	Session       models.ChatSession    `json:"session"`
	Messages      []models.Message      `json:"messages"`
	OtherUser     *models.PublicProfile `json:"otherUser,omitempty"`
	OtherTyping   bool                  `json:"otherTyping"`
	MySkip        bool                  `json:"mySkip"`
	PartnerSkip   bool                  `json:"partnerSkip"`
	MyDecision    *bool                 `json:"myDecision,omitempty"`
	TimeLeftMs    int64                 `json:"timeLeftMs"`
	IsParticipant bool                  `json:"isParticipant"`
}

// Send validates, rate-limits and stores one message.
func (s *ChatService) Send(ctx context.Context, clerkID string, in SendInput) (models.Message, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return models.Message{}, err
	}
	session, err := loadSessionFor(ctx, s.Store, user, in.SessionID)
	if err != nil {
		return models.Message{}, err
	}
	if session.Status != models.StatusActive {
		return models.Message{}, preconditionf("session is not active")
	}

	msgType := in.MessageType
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	content := strings.TrimSpace(in.Content)
	switch msgType {
	case models.MessageTypeText:
		if in.IsEncrypted {
			if in.EncryptedContent == "" || in.Nonce == "" {
				return models.Message{}, preconditionf("encrypted message missing ciphertext or nonce")
			}
			content = models.EncryptedPlaceholder
		} else {
			if content == "" {
				return models.Message{}, preconditionf("message is empty")
			}
			if len(content) > models.MaxMessageLength {
				return models.Message{}, preconditionf("message exceeds %d characters", models.MaxMessageLength)
			}
		}
	case models.MessageTypeImage:
		if in.ImageKey == "" {
			return models.Message{}, preconditionf("image message missing storage key")
		}
		if session.Phase != models.PhaseExtended {
			return models.Message{}, preconditionf("images are only allowed after matching")
		}
	default:
		return models.Message{}, preconditionf("unknown message type %q", msgType)
	}

	if err := s.checkRateLimit(ctx, session.SessionID, user.UserID, msgType); err != nil {
		return models.Message{}, err
	}

	now := nowMillis()
	msg := models.Message{
		ChatSessionID:    session.SessionID,
		CreatedAt:        now,
		MessageID:        uuid.New().String(),
		SenderID:         user.UserID,
		Content:          content,
		MessageType:      msgType,
		ImageKey:         in.ImageKey,
		IsEncrypted:      in.IsEncrypted,
		EncryptedContent: in.EncryptedContent,
		Nonce:            in.Nonce,
	}
	if err := s.Store.InsertMessage(ctx, msg); err != nil {
		return models.Message{}, fmt.Errorf("failed to store message: %w", err)
	}

	// Sending implies the caller stopped typing.
	s.patchTyping(ctx, session, user.UserID, false)

	if session.Phase == models.PhaseExtended {
		if match, err := s.Store.FindMatchBySession(ctx, session.SessionID); err == nil && match != nil {
			// Ordering hint only; failure is harmless.
			_, _ = s.Store.PatchMatch(ctx, match.MatchID, models.MatchPatch{
				LastMessageAt: int64Ptr(now),
			})
		}
	}

	s.Hub.Publish(ws.Event{
		Type:      ws.EventMessage,
		SessionID: session.SessionID,
		Payload:   msg,
	})
	return msg, nil
}

func (s *ChatService) checkRateLimit(ctx context.Context, sessionID, senderID, msgType string) error {
	recent, err := s.Store.ListRecentMessages(ctx, sessionID, 20)
	if err != nil {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	now := nowMillis()
	var inWindow, imagesInWindow int
	for _, m := range recent {
		if m.SenderID != senderID {
			continue
		}
		if now-m.CreatedAt < models.RateLimitWindowMs {
			inWindow++
		}
		if m.MessageType == models.MessageTypeImage && now-m.CreatedAt < models.ImageRateLimitWindow {
			imagesInWindow++
		}
	}
	if inWindow >= models.RateLimitCount {
		return fmt.Errorf("%w: slow down, too many messages", ErrRateLimited)
	}
	if msgType == models.MessageTypeImage && imagesInWindow >= models.ImageRateLimitCount {
		return fmt.Errorf("%w: too many images, wait a minute", ErrRateLimited)
	}
	return nil
}

// View assembles the chat screen state for one session.
func (s *ChatService) View(ctx context.Context, clerkID, sessionID string) (ChatView, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return ChatView{}, err
	}
	session, err := loadSessionFor(ctx, s.Store, user, sessionID)
	if err != nil {
		return ChatView{}, err
	}

	messages, err := s.Store.ListMessages(ctx, sessionID, models.MessageListLimit)
	if err != nil {
		return ChatView{}, fmt.Errorf("failed to list messages: %w", err)
	}
	if messages == nil {
		messages = []models.Message{}
	}

	isUser1 := session.User1ID == user.UserID
	view := ChatView{
		Session:       session,
		Messages:      messages,
		IsParticipant: true,
	}
	if isUser1 {
		view.MySkip, view.PartnerSkip = session.User1WantsSkip, session.User2WantsSkip
		view.MyDecision = session.User1WantsContinue
	} else {
		view.MySkip, view.PartnerSkip = session.User2WantsSkip, session.User1WantsSkip
		view.MyDecision = session.User2WantsContinue
	}

	now := nowMillis()
	if isUser1 {
		view.OtherTyping = session.User2Typing && now-session.User2LastTyping < models.TypingStaleMs
	} else {
		view.OtherTyping = session.User1Typing && now-session.User1LastTyping < models.TypingStaleMs
	}
	if session.Phase == models.PhaseSpeedDating && session.SpeedDatingEndsAt > now {
		view.TimeLeftMs = session.SpeedDatingEndsAt - now
	}

	// Identities stay hidden until both agreed to continue.
	if session.Phase == models.PhaseExtended {
		other, err := s.Store.GetUser(ctx, session.OtherParticipant(user.UserID))
		if err == nil {
			profile := other.Public()
			view.OtherUser = &profile
		}
	}
	return view, nil
}

// SetTyping updates the caller's typing indicator. Indicators expire
// client-side after TypingStaleMs, so a lost "stopped" update heals.
func (s *ChatService) SetTyping(ctx context.Context, clerkID, sessionID string, typing bool) error {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return err
	}
	session, err := loadSessionFor(ctx, s.Store, user, sessionID)
	if err != nil {
		return err
	}
	if session.Status == models.StatusEnded {
		return nil
	}
	s.patchTyping(ctx, session, user.UserID, typing)
	s.Hub.Publish(ws.Event{
		Type:      ws.EventTyping,
		SessionID: sessionID,
		Payload:   map[string]interface{}{"userId": user.UserID, "typing": typing},
	})
	return nil
}

func (s *ChatService) patchTyping(ctx context.Context, session models.ChatSession, userID string, typing bool) {
	patch := models.SessionPatch{}
	now := nowMillis()
	if session.User1ID == userID {
		patch.User1Typing = boolPtr(typing)
		patch.User1LastTyping = int64Ptr(now)
	} else {
		patch.User2Typing = boolPtr(typing)
		patch.User2LastTyping = int64Ptr(now)
	}
	// Typing state is ephemeral; losing an update is harmless.
	_, _ = s.Store.PatchSession(ctx, session.SessionID, patch)
}

// LeaveChat handles the user walking away from a chat screen. Leaving a
// speed dating session is a veto and ends it; leaving an extended chat
// just dismisses the screen, the match survives. Ended sessions are a
// no-op either way.
func (s *ChatService) LeaveChat(ctx context.Context, clerkID, sessionID string) error {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return err
	}
	session, err := loadSessionFor(ctx, s.Store, user, sessionID)
	if err != nil {
		return err
	}
	if session.Status == models.StatusEnded || session.Phase == models.PhaseExtended {
		return nil
	}
	_, err = s.Decisions.EndSession(ctx, session, user.UserID)
	return err
}
