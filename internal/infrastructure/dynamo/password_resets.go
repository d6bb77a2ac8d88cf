package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-account-api/internal/domain"
)

// PasswordResetRepo stores hashed password reset codes.
// PK: reset_id. GSI: email-index.
type PasswordResetRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPasswordResetRepo(client *dynamodb.Client, tableName string) *PasswordResetRepo {
	return &PasswordResetRepo{client: client, tableName: tableName}
}

func (r *PasswordResetRepo) Put(ctx context.Context, p *domain.PasswordReset) error {
	return putNew(ctx, r.client, r.tableName, "reset_id", p)
}

func (r *PasswordResetRepo) ListActiveByEmail(ctx context.Context, email string) ([]domain.PasswordReset, error) {
	var out []domain.PasswordReset
	if err := queryAll(ctx, r.client, activeByEmail(r.tableName, email), &out); err != nil {
		return nil, fmt.Errorf("query active password resets: %w", err)
	}
	return out, nil
}

func (r *PasswordResetRepo) Transition(ctx context.Context, resetID string, from, to domain.RecordStatus, now time.Time) (bool, error) {
	return transition(ctx, r.client, r.tableName, strKey("reset_id", resetID), from, to, now)
}
