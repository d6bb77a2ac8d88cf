package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-account-api/internal/domain"
)

// VerificationRepo stores per-email user verification records.
// PK: verification_id. GSI: email-index.
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

func (r *VerificationRepo) Put(ctx context.Context, v *domain.UserVerification) error {
	return putNew(ctx, r.client, r.tableName, "verification_id", v)
}

func (r *VerificationRepo) Get(ctx context.Context, verificationID string) (*domain.UserVerification, error) {
	var v domain.UserVerification
	if err := getItem(ctx, r.client, r.tableName, strKey("verification_id", verificationID), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetActiveByEmail returns the live record for email. Should concurrent first
// sends have produced more than one, the most recently updated wins.
func (r *VerificationRepo) GetActiveByEmail(ctx context.Context, email string) (*domain.UserVerification, error) {
	var out []domain.UserVerification
	if err := queryAll(ctx, r.client, activeByEmail(r.tableName, email), &out); err != nil {
		return nil, fmt.Errorf("query active verification: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("verification for %s: %w", email, domain.ErrNotFound)
	}
	latest := &out[0]
	for i := range out[1:] {
		if out[i+1].UpdatedAt.After(latest.UpdatedAt) {
			latest = &out[i+1]
		}
	}
	return latest, nil
}

// Reissue rebinds an active record to a freshly issued challenge and code,
// clearing any previous verification.
func (r *VerificationRepo) Reissue(ctx context.Context, verificationID, code, challengeID string, expiresAt, now time.Time) (bool, error) {
	return updateWhere(ctx, r.client, r.tableName, strKey("verification_id", verificationID),
		reissueUpdates(code, challengeID, expiresAt, now), statusIs(domain.StatusActive))
}

// MarkVerified flags an active record as verified at verifiedAt.
func (r *VerificationRepo) MarkVerified(ctx context.Context, verificationID string, verifiedAt time.Time) (bool, error) {
	return updateWhere(ctx, r.client, r.tableName, strKey("verification_id", verificationID),
		markVerifiedUpdates(verifiedAt), statusIs(domain.StatusActive))
}

func reissueUpdates(code, challengeID string, expiresAt, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		fieldVerificationCode: code,
		fieldChallengeID:      challengeID,
		fieldIsVerified:       false,
		fieldVerifiedAt:       nil,
		fieldExpiresAt:        expiresAt.Unix(),
		fieldUpdatedAt:        now.UTC(),
	}
}

func markVerifiedUpdates(verifiedAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		fieldIsVerified: true,
		fieldVerifiedAt: verifiedAt.UTC(),
		fieldUpdatedAt:  verifiedAt.UTC(),
	}
}

func (r *VerificationRepo) Transition(ctx context.Context, verificationID string, from, to domain.RecordStatus, now time.Time) (bool, error) {
	return transition(ctx, r.client, r.tableName, strKey("verification_id", verificationID), from, to, now)
}
