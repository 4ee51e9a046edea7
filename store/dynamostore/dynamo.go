package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ember_server/store"
)

// Store implements store.Store on DynamoDB. Atomic single-document
// patches map to UpdateItem; the queue claim maps to a conditional
// delete.
type Store struct {
	Client *dynamodb.Client
}

func New(client *dynamodb.Client) *Store {
	return &Store{Client: client}
}

var _ store.Store = (*Store)(nil)

// InitializeClient builds a DynamoDB client from the default AWS config chain.
func InitializeClient(ctx context.Context) *dynamodb.Client {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return dynamodb.NewFromConfig(cfg)
}

func (s *Store) putItem(ctx context.Context, tableName string, item interface{}) error {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item for table '%s': %w", tableName, err)
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &tableName,
		Item:      marshaled,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	return nil
}

func (s *Store) getItem(ctx context.Context, tableName string, key map[string]types.AttributeValue, out interface{}) error {
	output, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("failed to get item from table '%s': %w", tableName, err)
	}
	if output.Item == nil {
		return store.ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(output.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item from table '%s': %w", tableName, err)
	}
	return nil
}

func (s *Store) updateItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	updateExpression string,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
	out interface{},
) error {
	input := &dynamodb.UpdateItemInput{
		TableName:                &tableName,
		Key:                      key,
		UpdateExpression:         &updateExpression,
		ExpressionAttributeNames: expressionAttributeNames,
		// Require the document to exist; patches never upsert.
		ConditionExpression: aws.String("attribute_exists(" + keyName(key) + ")"),
		ReturnValues:        types.ReturnValueAllNew,
	}
	if len(expressionAttributeValues) > 0 {
		input.ExpressionAttributeValues = expressionAttributeValues
	}
	output, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to update item in table '%s': %w", tableName, err)
	}
	if out != nil && output.Attributes != nil {
		if err := attributevalue.UnmarshalMap(output.Attributes, out); err != nil {
			return fmt.Errorf("failed to unmarshal updated item from table '%s': %w", tableName, err)
		}
	}
	return nil
}

// errConditionFailed reports a guarded update whose condition did not
// hold. Callers translate it into an applied=false result.
var errConditionFailed = errors.New("condition failed")

// updateItemIf is updateItem with an extra caller-supplied condition on
// the current document state.
func (s *Store) updateItemIf(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	updateExpression string,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
	condition string,
	out interface{},
) error {
	input := &dynamodb.UpdateItemInput{
		TableName:                &tableName,
		Key:                      key,
		UpdateExpression:         &updateExpression,
		ExpressionAttributeNames: expressionAttributeNames,
		ConditionExpression:      aws.String("attribute_exists(" + keyName(key) + ") AND (" + condition + ")"),
		ReturnValues:             types.ReturnValueAllNew,
	}
	if len(expressionAttributeValues) > 0 {
		input.ExpressionAttributeValues = expressionAttributeValues
	}
	output, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return errConditionFailed
		}
		return fmt.Errorf("failed conditional update in table '%s': %w", tableName, err)
	}
	if out != nil && output.Attributes != nil {
		if err := attributevalue.UnmarshalMap(output.Attributes, out); err != nil {
			return fmt.Errorf("failed to unmarshal updated item from table '%s': %w", tableName, err)
		}
	}
	return nil
}

func (s *Store) deleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) error {
	_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &tableName,
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from table '%s': %w", tableName, err)
	}
	return nil
}

// deleteItemIfExists deletes the item only if it still exists and reports
// whether this caller performed the delete. Concurrent callers racing on
// the same key see exactly one true.
func (s *Store) deleteItemIfExists(ctx context.Context, tableName string, key map[string]types.AttributeValue) (bool, error) {
	_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           &tableName,
		Key:                 key,
		ConditionExpression: aws.String("attribute_exists(" + keyName(key) + ")"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("failed conditional delete from table '%s': %w", tableName, err)
	}
	return true, nil
}

func (s *Store) query(ctx context.Context, input *dynamodb.QueryInput, out interface{}) error {
	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to query table '%s': %w", aws.ToString(input.TableName), err)
	}
	if err := attributevalue.UnmarshalListOfMaps(result.Items, out); err != nil {
		return fmt.Errorf("failed to unmarshal query result: %w", err)
	}
	return nil
}

func (s *Store) scan(
	ctx context.Context,
	tableName string,
	filterExpression string,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
	out interface{},
) error {
	input := &dynamodb.ScanInput{TableName: &tableName}
	if filterExpression != "" {
		input.FilterExpression = &filterExpression
		input.ExpressionAttributeValues = expressionAttributeValues
	}
	if len(expressionAttributeNames) > 0 {
		input.ExpressionAttributeNames = expressionAttributeNames
	}

	var items []map[string]types.AttributeValue
	for {
		output, err := s.Client.Scan(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to scan table '%s': %w", tableName, err)
		}
		items = append(items, output.Items...)
		if output.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("failed to unmarshal scan result: %w", err)
	}
	return nil
}

// batchDelete removes items in chunks of 25, the BatchWriteItem ceiling.
func (s *Store) batchDelete(ctx context.Context, tableName string, keys []map[string]types.AttributeValue) error {
	const maxBatchSize = 25
	for i := 0; i < len(keys); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		requests := make([]types.WriteRequest, 0, end-i)
		for _, key := range keys[i:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: key},
			})
		}
		_, err := s.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{tableName: requests},
		})
		if err != nil {
			return fmt.Errorf("failed to batch delete from table '%s': %w", tableName, err)
		}
	}
	return nil
}

func keyName(key map[string]types.AttributeValue) string {
	for name := range key {
		return name
	}
	return ""
}

func stringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}
