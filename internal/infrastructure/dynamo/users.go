package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-account-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
// PK: user_id. GSI: email-index. Deleted users keep their row with is_deleted set.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	return putNew(ctx, r.client, r.tableName, "user_id", u)
}

// Get returns a non-deleted user.
func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	if err := getItem(ctx, r.client, r.tableName, strKey("user_id", userID), &u); err != nil {
		return nil, err
	}
	if u.IsDeleted {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return &u, nil
}

// GetByEmail returns the non-deleted user registered with email.
// No Limit is set: DynamoDB applies Limit before the filter.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var out []domain.User
	err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexEmail),
		KeyConditionExpression: aws.String("#email = :email"),
		FilterExpression:       aws.String("#deleted = :false"),
		ExpressionAttributeNames: map[string]string{
			"#email":   fieldEmail,
			"#deleted": fieldIsDeleted,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": strVal(email),
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	return &out[0], nil
}

// Update patches a non-deleted user.
func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ok, err := updateWhere(ctx, r.client, r.tableName, strKey("user_id", userID), updates, condition{
		Expr:   "#cond_deleted = :cond_false",
		Names:  map[string]string{"#cond_deleted": fieldIsDeleted},
		Values: map[string]types.AttributeValue{":cond_false": &types.AttributeValueMemberBOOL{Value: false}},
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, userID string) error {
	return r.Update(ctx, userID, map[string]interface{}{
		fieldIsDeleted: true,
		fieldDeletedAt: time.Now().UTC(),
	})
}
