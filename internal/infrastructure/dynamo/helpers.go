package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-account-api/internal/domain"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

func strVal(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

// updateExpr is a SET expression with its placeholder maps.
type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET expression.
// Fields are emitted in sorted order so the expression is deterministic.
func buildUpdateExpr(updates map[string]interface{}) (*updateExpr, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ue := &updateExpr{
		Expr:   "SET ",
		Names:  make(map[string]string, len(keys)),
		Values: make(map[string]types.AttributeValue, len(keys)),
	}
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		if i > 0 {
			ue.Expr += ", "
		}
		ue.Expr += fmt.Sprintf("%s = %s", nameKey, valueKey)
	}
	return ue, nil
}

// condition is a ConditionExpression fragment with its own placeholders.
// Placeholder names must not collide with the #fN/:vN names of buildUpdateExpr.
type condition struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// statusIs requires the item to exist with the given status.
func statusIs(s domain.RecordStatus) condition {
	return condition{
		Expr:   "#cond_status = :cond_status",
		Names:  map[string]string{"#cond_status": fieldStatus},
		Values: map[string]types.AttributeValue{":cond_status": strVal(string(s))},
	}
}

// updateWhere applies updates under cond. It returns false, nil when the
// condition did not hold (including when the item does not exist).
func updateWhere(ctx context.Context, client *dynamodb.Client, table string, key map[string]types.AttributeValue, updates map[string]interface{}, cond condition) (bool, error) {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return false, err
	}
	for k, v := range cond.Names {
		ue.Names[k] = v
	}
	for k, v := range cond.Values {
		ue.Values[k] = v
	}
	_, err = client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       key,
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String(cond.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// transition moves a record from one status to another, stamping updated_at.
func transition(ctx context.Context, client *dynamodb.Client, table string, key map[string]types.AttributeValue, from, to domain.RecordStatus, now time.Time) (bool, error) {
	return updateWhere(ctx, client, table, key, transitionUpdates(to, now), statusIs(from))
}

func transitionUpdates(to domain.RecordStatus, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		fieldStatus:    string(to),
		fieldUpdatedAt: now.UTC(),
	}
}

// putNew writes item only if no item with the same hash key exists.
func putNew(ctx context.Context, client *dynamodb.Client, table, hashKey string, v interface{}) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal %s item: %w", table, err)
	}
	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": hashKey},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%s item already exists: %w", table, domain.ErrConflict)
		}
		return err
	}
	return nil
}

// getItem loads the item at key into out. It wraps domain.ErrNotFound when absent.
func getItem(ctx context.Context, client *dynamodb.Client, table string, key map[string]types.AttributeValue, out interface{}) error {
	res, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return err
	}
	if res.Item == nil {
		return fmt.Errorf("%s item: %w", table, domain.ErrNotFound)
	}
	return attributevalue.UnmarshalMap(res.Item, out)
}

// queryAll drains every page of a Query into out (a pointer to a slice).
func queryAll(ctx context.Context, client *dynamodb.Client, input *dynamodb.QueryInput, out interface{}) error {
	var items []map[string]types.AttributeValue
	p := dynamodb.NewQueryPaginator(client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return err
		}
		items = append(items, page.Items...)
	}
	return attributevalue.UnmarshalListOfMaps(items, out)
}

// activeByEmail queries the email GSI for records still in the active state.
func activeByEmail(table, email string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(indexEmail),
		KeyConditionExpression: aws.String("#email = :email"),
		FilterExpression:       aws.String("#status = :active"),
		ExpressionAttributeNames: map[string]string{
			"#email":  fieldEmail,
			"#status": fieldStatus,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email":  strVal(email),
			":active": strVal(string(domain.StatusActive)),
		},
	}
}
