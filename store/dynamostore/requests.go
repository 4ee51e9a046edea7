package dynamostore

import (
	"context"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ember_server/models"
)

func (s *Store) InsertChatRequest(ctx context.Context, r models.ChatRequest) error {
	return s.putItem(ctx, models.ChatRequestsTable, r)
}

func (s *Store) GetChatRequest(ctx context.Context, requestID string) (models.ChatRequest, error) {
	var r models.ChatRequest
	err := s.getItem(ctx, models.ChatRequestsTable, stringKey("requestId", requestID), &r)
	return r, err
}

func (s *Store) PatchChatRequest(ctx context.Context, requestID string, status string, respondedAt int64) (models.ChatRequest, error) {
	expr := newUpdateExpression()
	expr.set("status", &types.AttributeValueMemberS{Value: status})
	expr.set("respondedAt", &types.AttributeValueMemberN{Value: strconv.FormatInt(respondedAt, 10)})

	var r models.ChatRequest
	err := s.updateItem(ctx, models.ChatRequestsTable, stringKey("requestId", requestID),
		expr.expression(), expr.values, expr.names, &r)
	return r, err
}

func (s *Store) ListChatRequestsForUser(ctx context.Context, toUserID string, status string) ([]models.ChatRequest, error) {
	filter := "toUserId = :toUserId"
	values := map[string]types.AttributeValue{
		":toUserId": &types.AttributeValueMemberS{Value: toUserID},
	}
	names := map[string]string{}
	if status != "" {
		filter += " AND #status = :status"
		values[":status"] = &types.AttributeValueMemberS{Value: status}
		names["#status"] = "status"
	}

	var requests []models.ChatRequest
	if err := s.scan(ctx, models.ChatRequestsTable, filter, values, names, &requests); err != nil {
		return nil, err
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt > requests[j].CreatedAt })
	return requests, nil
}

func (s *Store) DeleteRequestsForMatch(ctx context.Context, matchID string) error {
	var requests []models.ChatRequest
	err := s.scan(ctx, models.ChatRequestsTable,
		"matchId = :matchId",
		map[string]types.AttributeValue{
			":matchId": &types.AttributeValueMemberS{Value: matchID},
		},
		nil,
		&requests)
	if err != nil {
		return err
	}
	keys := make([]map[string]types.AttributeValue, 0, len(requests))
	for _, r := range requests {
		keys = append(keys, stringKey("requestId", r.RequestID))
	}
	return s.batchDelete(ctx, models.ChatRequestsTable, keys)
}
