package dynamostore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ember_server/models"
)

// Messages use a composite sort key "createdAt#messageId" so two sends
// landing on the same millisecond never overwrite each other while the
// range order stays chronological.
func messageSortKey(m models.Message) string {
	return fmt.Sprintf("%013d#%s", m.CreatedAt, m.MessageID)
}

type messageKeyRecord struct {
	ChatSessionID string `dynamodbav:"chatSessionId"`
	SortKey       string `dynamodbav:"sortKey"`
}

func (s *Store) InsertMessage(ctx context.Context, m models.Message) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	item["sortKey"] = &types.AttributeValueMemberS{Value: messageSortKey(m)}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(models.MessagesTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	return nil
}

func (s *Store) ListMessages(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	return s.listMessages(ctx, sessionID, limit, true)
}

func (s *Store) ListRecentMessages(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	return s.listMessages(ctx, sessionID, limit, false)
}

func (s *Store) listMessages(ctx context.Context, sessionID string, limit int, ascending bool) ([]models.Message, error) {
	// Always read newest-first so the limit caps to the most recent N,
	// then reverse for chronological callers.
	var messages []models.Message
	err := s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(models.MessagesTable),
		KeyConditionExpression: aws.String("chatSessionId = :sessionId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sessionId": &types.AttributeValueMemberS{Value: sessionID},
		},
		Limit:            aws.Int32(int32(limit)),
		ScanIndexForward: aws.Bool(false),
	}, &messages)
	if err != nil {
		return nil, err
	}
	if ascending {
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	}
	return messages, nil
}

func (s *Store) DeleteSessionMessages(ctx context.Context, sessionID string) error {
	var records []messageKeyRecord
	err := s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(models.MessagesTable),
		KeyConditionExpression: aws.String("chatSessionId = :sessionId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sessionId": &types.AttributeValueMemberS{Value: sessionID},
		},
		ProjectionExpression: aws.String("chatSessionId, sortKey"),
	}, &records)
	if err != nil {
		return err
	}
	return s.batchDelete(ctx, models.MessagesTable, messageKeys(records))
}

func (s *Store) DeleteUserMessages(ctx context.Context, userID string) error {
	var records []messageKeyRecord
	err := s.scan(ctx, models.MessagesTable,
		"senderId = :senderId",
		map[string]types.AttributeValue{
			":senderId": &types.AttributeValueMemberS{Value: userID},
		},
		nil,
		&records)
	if err != nil {
		return err
	}
	return s.batchDelete(ctx, models.MessagesTable, messageKeys(records))
}

func messageKeys(records []messageKeyRecord) []map[string]types.AttributeValue {
	keys := make([]map[string]types.AttributeValue, 0, len(records))
	for _, r := range records {
		keys = append(keys, map[string]types.AttributeValue{
			"chatSessionId": &types.AttributeValueMemberS{Value: r.ChatSessionID},
			"sortKey":       &types.AttributeValueMemberS{Value: r.SortKey},
		})
	}
	return keys
}
