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

const notificationsByUserIndex = "user_id-created_at-index"

// NotificationRepo provides typed DynamoDB operations for the notifications table.
//
// Every mutating call carries a ConditionExpression pinning the row to the
// caller's user_id. A failed condition (row absent or owned by someone else)
// is skipped silently instead of failing the batch, so one stale id in a
// bulk request never breaks the rest.
type NotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByUser returns every notification owned by userID, newest first.
// The user_id-created_at GSI keeps the sort on the server; pages are drained
// so callers always see the complete set.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	var (
		items   []domain.Notification
		lastKey map[string]types.AttributeValue
	)
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(notificationsByUserIndex),
			KeyConditionExpression: aws.String("user_id = :uid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid": &types.AttributeValueMemberS{Value: userID},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Notification
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		items = append(items, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		lastKey = out.LastEvaluatedKey
	}
}

// MarkRead sets is_read on each given id that userID owns and returns how
// many rows were updated. Unknown and foreign ids are skipped.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID string, ids []string) (int, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldIsRead: true})
	if err != nil {
		return 0, err
	}
	values := ue.Values
	values[":uid"] = &types.AttributeValueMemberS{Value: userID}

	updated := 0
	for _, id := range ids {
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(r.tableName),
			Key:                       strKey("notification_id", id),
			UpdateExpression:          aws.String(ue.Expr),
			ConditionExpression:       aws.String("user_id = :uid"),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: values,
		})
		if err != nil {
			if isConditionalCheckFailed(err) {
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// MarkReadAll marks every unread notification owned by userID.
func (r *NotificationRepo) MarkReadAll(ctx context.Context, userID string) (int, error) {
	ids, err := r.listIDs(ctx, userID, true)
	if err != nil {
		return 0, err
	}
	return r.MarkRead(ctx, userID, ids)
}

// Delete removes each given id that userID owns and returns how many rows
// were deleted. Unknown and foreign ids are skipped. Removal is permanent.
func (r *NotificationRepo) Delete(ctx context.Context, userID string, ids []string) (int, error) {
	values := map[string]types.AttributeValue{
		":uid": &types.AttributeValueMemberS{Value: userID},
	}
	deleted := 0
	for _, id := range ids {
		_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:                 aws.String(r.tableName),
			Key:                       strKey("notification_id", id),
			ConditionExpression:       aws.String("user_id = :uid"),
			ExpressionAttributeValues: values,
		})
		if err != nil {
			if isConditionalCheckFailed(err) {
				continue
			}
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// DeleteAll removes every notification owned by userID.
func (r *NotificationRepo) DeleteAll(ctx context.Context, userID string) (int, error) {
	ids, err := r.listIDs(ctx, userID, false)
	if err != nil {
		return 0, err
	}
	return r.Delete(ctx, userID, ids)
}

// UnreadCount counts unread notifications for userID without pulling items.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	count := 0
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(notificationsByUserIndex),
			KeyConditionExpression: aws.String("user_id = :uid"),
			FilterExpression:       aws.String("is_read = :f"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid": &types.AttributeValueMemberS{Value: userID},
				":f":   &types.AttributeValueMemberBOOL{Value: false},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return 0, err
		}
		count += int(out.Count)
		if len(out.LastEvaluatedKey) == 0 {
			return count, nil
		}
		lastKey = out.LastEvaluatedKey
	}
}

// listIDs collects the notification ids owned by userID, optionally only
// unread ones. Bulk mark/delete operate on this set.
func (r *NotificationRepo) listIDs(ctx context.Context, userID string, unreadOnly bool) ([]string, error) {
	values := map[string]types.AttributeValue{
		":uid": &types.AttributeValueMemberS{Value: userID},
	}
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(notificationsByUserIndex),
		KeyConditionExpression:    aws.String("user_id = :uid"),
		ExpressionAttributeValues: values,
		ProjectionExpression:      aws.String("notification_id"),
	}
	if unreadOnly {
		input.FilterExpression = aws.String("is_read = :f")
		values[":f"] = &types.AttributeValueMemberBOOL{Value: false}
	}

	var ids []string
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			if v, ok := item["notification_id"].(*types.AttributeValueMemberS); ok {
				ids = append(ids, v.Value)
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			return ids, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
