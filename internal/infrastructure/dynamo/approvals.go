package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/go-notify-api/internal/domain"
)

// ApprovalRepo reads the approvals table maintained by the orders flow.
// The badge needs nothing but a count of open items per assignee, which the
// (assigned_to, approval_id) key answers with a single query.
type ApprovalRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewApprovalRepo(client *dynamodb.Client, tableName string) *ApprovalRepo {
	return &ApprovalRepo{client: client, tableName: tableName}
}

// CountOpenForUser counts approvals assigned to userID still in the open state.
func (r *ApprovalRepo) CountOpenForUser(ctx context.Context, userID string) (int, error) {
	count := 0
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("assigned_to = :uid"),
			FilterExpression:       aws.String("#st = :open"),
			ExpressionAttributeNames: map[string]string{
				"#st": fieldState,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid":  &types.AttributeValueMemberS{Value: userID},
				":open": &types.AttributeValueMemberS{Value: domain.ApprovalOpen},
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
