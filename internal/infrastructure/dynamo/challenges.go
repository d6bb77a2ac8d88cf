package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-account-api/internal/domain"
)

// ChallengeRepo stores verification challenges.
// PK: challenge_id. GSIs: email-index, status-expires_at-index.
type ChallengeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChallengeRepo(client *dynamodb.Client, tableName string) *ChallengeRepo {
	return &ChallengeRepo{client: client, tableName: tableName}
}

func (r *ChallengeRepo) Put(ctx context.Context, c *domain.VerificationChallenge) error {
	return putNew(ctx, r.client, r.tableName, "challenge_id", c)
}

func (r *ChallengeRepo) Get(ctx context.Context, challengeID string) (*domain.VerificationChallenge, error) {
	var c domain.VerificationChallenge
	if err := getItem(ctx, r.client, r.tableName, strKey("challenge_id", challengeID), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListActiveByEmail returns every challenge for email still in the active state.
func (r *ChallengeRepo) ListActiveByEmail(ctx context.Context, email string) ([]domain.VerificationChallenge, error) {
	var out []domain.VerificationChallenge
	if err := queryAll(ctx, r.client, activeByEmail(r.tableName, email), &out); err != nil {
		return nil, fmt.Errorf("query active challenges: %w", err)
	}
	return out, nil
}

// ListExpiredActive returns active challenges whose expires_at is at or before now.
func (r *ChallengeRepo) ListExpiredActive(ctx context.Context, now time.Time) ([]domain.VerificationChallenge, error) {
	var out []domain.VerificationChallenge
	err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexStatusExpiring),
		KeyConditionExpression: aws.String("#status = :active AND #exp <= :now"),
		ExpressionAttributeNames: map[string]string{
			"#status": fieldStatus,
			"#exp":    fieldExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":active": strVal(string(domain.StatusActive)),
			":now":    &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("query expired challenges: %w", err)
	}
	return out, nil
}

// Transition moves a challenge from one status to another. It reports false
// when the challenge was not in the from state.
func (r *ChallengeRepo) Transition(ctx context.Context, challengeID string, from, to domain.RecordStatus, now time.Time) (bool, error) {
	return transition(ctx, r.client, r.tableName, strKey("challenge_id", challengeID), from, to, now)
}
