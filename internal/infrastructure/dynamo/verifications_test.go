package dynamo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReissueUpdates_ClearsVerificationAndStampsClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := reissueUpdates("654321", "ch-2", now.Add(15*time.Minute), now)

	assert.Equal(t, "654321", u[fieldVerificationCode])
	assert.Equal(t, "ch-2", u[fieldChallengeID])
	assert.Equal(t, false, u[fieldIsVerified])
	assert.Nil(t, u[fieldVerifiedAt])
	assert.Equal(t, now.Add(15*time.Minute).Unix(), u[fieldExpiresAt])
	assert.Equal(t, now, u[fieldUpdatedAt])

	ue, err := buildUpdateExpr(u)
	require.NoError(t, err)
	assert.Len(t, ue.Names, 6)
}

func TestMarkVerifiedUpdates_UpdatedAtMatchesVerifiedAt(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 2, 0, 0, time.UTC)
	u := markVerifiedUpdates(at)

	assert.Equal(t, true, u[fieldIsVerified])
	assert.Equal(t, at, u[fieldVerifiedAt])
	assert.Equal(t, u[fieldVerifiedAt], u[fieldUpdatedAt])
}
