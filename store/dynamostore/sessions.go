package dynamostore

import (
	"context"
	"errors"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ember_server/models"
)

func (s *Store) CreateSession(ctx context.Context, sess models.ChatSession) error {
	return s.putItem(ctx, models.ChatSessionsTable, sess)
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (models.ChatSession, error) {
	var sess models.ChatSession
	err := s.getItem(ctx, models.ChatSessionsTable, stringKey("sessionId", sessionID), &sess)
	return sess, err
}

func (s *Store) PatchSession(ctx context.Context, sessionID string, p models.SessionPatch) (models.ChatSession, error) {
	expr := sessionUpdateExpression(p)
	if expr.empty() {
		return s.GetSession(ctx, sessionID)
	}

	var sess models.ChatSession
	err := s.updateItem(ctx, models.ChatSessionsTable, stringKey("sessionId", sessionID),
		expr.expression(), expr.values, expr.names, &sess)
	return sess, err
}

// PatchSessionIfNotEnded refuses to touch a session that already reached
// the terminal ended status, so a late vote can never resurrect it.
func (s *Store) PatchSessionIfNotEnded(ctx context.Context, sessionID string, p models.SessionPatch) (models.ChatSession, bool, error) {
	expr := sessionUpdateExpression(p)
	expr.names["#status"] = "status"
	expr.values[":endedGuard"] = &types.AttributeValueMemberS{Value: models.StatusEnded}
	return s.guardedSessionUpdate(ctx, sessionID, expr, "#status <> :endedGuard")
}

// PromoteSession flips a session out of the speed_dating phase; the
// condition makes exactly one of any set of concurrent promoters win.
func (s *Store) PromoteSession(ctx context.Context, sessionID string, p models.SessionPatch) (models.ChatSession, bool, error) {
	expr := sessionUpdateExpression(p)
	expr.names["#phase"] = "phase"
	expr.names["#status"] = "status"
	expr.values[":phaseGuard"] = &types.AttributeValueMemberS{Value: models.PhaseSpeedDating}
	expr.values[":endedGuard"] = &types.AttributeValueMemberS{Value: models.StatusEnded}
	return s.guardedSessionUpdate(ctx, sessionID, expr, "#phase = :phaseGuard AND #status <> :endedGuard")
}

func (s *Store) guardedSessionUpdate(ctx context.Context, sessionID string, expr *updateExpression, condition string) (models.ChatSession, bool, error) {
	var sess models.ChatSession
	err := s.updateItemIf(ctx, models.ChatSessionsTable, stringKey("sessionId", sessionID),
		expr.expression(), expr.values, expr.names, condition, &sess)
	if errors.Is(err, errConditionFailed) {
		current, gerr := s.GetSession(ctx, sessionID)
		if gerr != nil {
			return models.ChatSession{}, false, gerr
		}
		return current, false, nil
	}
	if err != nil {
		return models.ChatSession{}, false, err
	}
	return sess, true, nil
}

func sessionUpdateExpression(p models.SessionPatch) *updateExpression {
	expr := newUpdateExpression()
	if p.Status != nil {
		expr.set("status", &types.AttributeValueMemberS{Value: *p.Status})
	}
	if p.Phase != nil {
		expr.set("phase", &types.AttributeValueMemberS{Value: *p.Phase})
	}
	if p.User1WantsContinue != nil {
		expr.set("user1WantsContinue", &types.AttributeValueMemberBOOL{Value: *p.User1WantsContinue})
	}
	if p.User2WantsContinue != nil {
		expr.set("user2WantsContinue", &types.AttributeValueMemberBOOL{Value: *p.User2WantsContinue})
	}
	if p.ClearUser1Continue {
		expr.remove("user1WantsContinue")
	}
	if p.ClearUser2Continue {
		expr.remove("user2WantsContinue")
	}
	if p.User1WantsSkip != nil {
		expr.set("user1WantsSkip", &types.AttributeValueMemberBOOL{Value: *p.User1WantsSkip})
	}
	if p.User2WantsSkip != nil {
		expr.set("user2WantsSkip", &types.AttributeValueMemberBOOL{Value: *p.User2WantsSkip})
	}
	if p.User1Typing != nil {
		expr.set("user1Typing", &types.AttributeValueMemberBOOL{Value: *p.User1Typing})
	}
	if p.User2Typing != nil {
		expr.set("user2Typing", &types.AttributeValueMemberBOOL{Value: *p.User2Typing})
	}
	if p.User1LastTyping != nil {
		expr.set("user1LastTyping", &types.AttributeValueMemberN{Value: strconv.FormatInt(*p.User1LastTyping, 10)})
	}
	if p.User2LastTyping != nil {
		expr.set("user2LastTyping", &types.AttributeValueMemberN{Value: strconv.FormatInt(*p.User2LastTyping, 10)})
	}
	if p.RevealStartedAt != nil {
		expr.set("revealStartedAt", &types.AttributeValueMemberN{Value: strconv.FormatInt(*p.RevealStartedAt, 10)})
	}
	if p.ClearRevealStarted {
		expr.remove("revealStartedAt")
	}
	if p.EndedAt != nil {
		expr.set("endedAt", &types.AttributeValueMemberN{Value: strconv.FormatInt(*p.EndedAt, 10)})
	}
	return expr
}

func (s *Store) FindActiveSpeedDatingSession(ctx context.Context, userID string) (*models.ChatSession, error) {
	// waiting_reveal still binds the user; only ended releases them.
	var sessions []models.ChatSession
	err := s.scan(ctx, models.ChatSessionsTable,
		"(user1Id = :userId OR user2Id = :userId) AND #status <> :ended AND #phase = :phase",
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
			":ended":  &types.AttributeValueMemberS{Value: models.StatusEnded},
			":phase":  &types.AttributeValueMemberS{Value: models.PhaseSpeedDating},
		},
		map[string]string{"#status": "status", "#phase": "phase"},
		&sessions)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

func (s *Store) ListSessionsForUser(ctx context.Context, userID string) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := s.scan(ctx, models.ChatSessionsTable,
		"user1Id = :userId OR user2Id = :userId",
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		},
		nil,
		&sessions)
	return sessions, err
}

func (s *Store) ListWaitingRevealBefore(ctx context.Context, cutoff int64) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := s.scan(ctx, models.ChatSessionsTable,
		"#status = :waiting AND revealStartedAt < :cutoff",
		map[string]types.AttributeValue{
			":waiting": &types.AttributeValueMemberS{Value: models.StatusWaitingReveal},
			":cutoff":  &types.AttributeValueMemberN{Value: strconv.FormatInt(cutoff, 10)},
		},
		map[string]string{"#status": "status"},
		&sessions)
	return sessions, err
}
