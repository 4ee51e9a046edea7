package dynamostore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ember_server/models"
	"ember_server/store"
)

// ClerkIDIndex is the GSI mapping auth-provider subjects to users.
const ClerkIDIndex = "by_clerk_id"

func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	return s.putItem(ctx, models.UsersTable, u)
}

func (s *Store) GetUser(ctx context.Context, userID string) (models.User, error) {
	var u models.User
	err := s.getItem(ctx, models.UsersTable, stringKey("userId", userID), &u)
	return u, err
}

func (s *Store) GetUserByClerkID(ctx context.Context, clerkID string) (models.User, error) {
	var users []models.User
	err := s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(models.UsersTable),
		IndexName:              aws.String(ClerkIDIndex),
		KeyConditionExpression: aws.String("clerkId = :clerkId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":clerkId": &types.AttributeValueMemberS{Value: clerkID},
		},
		Limit: aws.Int32(1),
	}, &users)
	if err != nil {
		return models.User{}, err
	}
	if len(users) == 0 {
		return models.User{}, store.ErrNotFound
	}
	return users[0], nil
}

func (s *Store) UpdateUser(ctx context.Context, userID string, p models.UserPatch) (models.User, error) {
	expr := newUpdateExpression()
	if p.Name != nil {
		expr.set("name", &types.AttributeValueMemberS{Value: *p.Name})
	}
	if p.Age != nil {
		expr.set("age", &types.AttributeValueMemberN{Value: strconv.Itoa(*p.Age)})
	}
	if p.Gender != nil {
		expr.set("gender", &types.AttributeValueMemberS{Value: *p.Gender})
	}
	if p.GenderPreference != nil {
		expr.set("genderPreference", &types.AttributeValueMemberS{Value: *p.GenderPreference})
	}
	if p.Bio != nil {
		expr.set("bio", &types.AttributeValueMemberS{Value: *p.Bio})
	}
	if p.Photos != nil {
		expr.set("photos", stringList(*p.Photos))
	}
	if p.PhotoStorageKeys != nil {
		expr.set("photoStorageKeys", stringList(*p.PhotoStorageKeys))
	}
	if p.IsInQueue != nil {
		expr.set("isInQueue", &types.AttributeValueMemberBOOL{Value: *p.IsInQueue})
	}
	if p.PublicKey != nil {
		expr.set("publicKey", &types.AttributeValueMemberS{Value: *p.PublicKey})
	}
	if p.UpdatedAt != nil {
		expr.set("updatedAt", &types.AttributeValueMemberN{Value: strconv.FormatInt(*p.UpdatedAt, 10)})
	}
	if expr.empty() {
		return s.GetUser(ctx, userID)
	}

	var u models.User
	err := s.updateItem(ctx, models.UsersTable, stringKey("userId", userID),
		expr.expression(), expr.values, expr.names, &u)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	return s.deleteItem(ctx, models.UsersTable, stringKey("userId", userID))
}

func stringList(values []string) types.AttributeValue {
	list := make([]types.AttributeValue, 0, len(values))
	for _, v := range values {
		list = append(list, &types.AttributeValueMemberS{Value: v})
	}
	return &types.AttributeValueMemberL{Value: list}
}
