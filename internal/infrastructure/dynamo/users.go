package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/go-notify-api/internal/domain"
)

const usersByRoleIndex = "role-index"

// UserRepo reads the users table maintained by the account service. This
// service only resolves recipients, so the surface is read-only.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListActiveByRole returns enabled users holding the given role. A role with
// no active users yields an empty slice, not an error.
func (r *UserRepo) ListActiveByRole(ctx context.Context, role string) ([]domain.User, error) {
	var (
		users   []domain.User
		lastKey map[string]types.AttributeValue
	)
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(usersByRoleIndex),
			KeyConditionExpression: aws.String("#r = :role"),
			FilterExpression:       aws.String("#en = :one"),
			ExpressionAttributeNames: map[string]string{
				"#r":  "role",
				"#en": fieldEnable,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":role": &types.AttributeValueMemberS{Value: role},
				":one":  &types.AttributeValueMemberN{Value: "1"},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.User
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		users = append(users, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return users, nil
		}
		lastKey = out.LastEvaluatedKey
	}
}
