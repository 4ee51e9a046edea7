package dynamostore

import (
	"context"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ember_server/models"
)

func (s *Store) InsertMatch(ctx context.Context, m models.Match) error {
	return s.putItem(ctx, models.MatchesTable, m)
}

func (s *Store) GetMatch(ctx context.Context, matchID string) (models.Match, error) {
	var m models.Match
	err := s.getItem(ctx, models.MatchesTable, stringKey("matchId", matchID), &m)
	return m, err
}

func (s *Store) PatchMatch(ctx context.Context, matchID string, p models.MatchPatch) (models.Match, error) {
	expr := newUpdateExpression()
	if p.IsActive != nil {
		expr.set("isActive", &types.AttributeValueMemberBOOL{Value: *p.IsActive})
	}
	if p.EndedBy != nil {
		expr.set("endedBy", &types.AttributeValueMemberS{Value: *p.EndedBy})
	}
	if p.ClearEndedBy {
		expr.remove("endedBy")
	}
	if p.LastMessageAt != nil {
		expr.set("lastMessageAt", &types.AttributeValueMemberN{Value: strconv.FormatInt(*p.LastMessageAt, 10)})
	}
	if p.ChatSessionID != nil {
		expr.set("chatSessionId", &types.AttributeValueMemberS{Value: *p.ChatSessionID})
	}
	if expr.empty() {
		return s.GetMatch(ctx, matchID)
	}

	var m models.Match
	err := s.updateItem(ctx, models.MatchesTable, stringKey("matchId", matchID),
		expr.expression(), expr.values, expr.names, &m)
	return m, err
}

func (s *Store) ListMatchesForUser(ctx context.Context, userID string, limit int) ([]models.Match, error) {
	var matches []models.Match
	err := s.scan(ctx, models.MatchesTable,
		"user1Id = :userId OR user2Id = :userId",
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		},
		nil,
		&matches)
	if err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].MatchedAt > matches[j].MatchedAt })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *Store) FindMatchBySession(ctx context.Context, sessionID string) (*models.Match, error) {
	var matches []models.Match
	err := s.scan(ctx, models.MatchesTable,
		"chatSessionId = :sessionId",
		map[string]types.AttributeValue{
			":sessionId": &types.AttributeValueMemberS{Value: sessionID},
		},
		nil,
		&matches)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (s *Store) DeleteMatch(ctx context.Context, matchID string) error {
	return s.deleteItem(ctx, models.MatchesTable, stringKey("matchId", matchID))
}
