package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmail            = "email"
	fieldStatus           = "status"
	fieldExpiresAt        = "expires_at"
	fieldUpdatedAt        = "updated_at"
	fieldVerificationCode = "verification_code"
	fieldChallengeID      = "challenge_id"
	fieldIsVerified       = "is_verified"
	fieldVerifiedAt       = "verified_at"
	fieldIsDeleted        = "is_deleted"
	fieldDeletedAt        = "deleted_at"
)

// Index names created by Bootstrap.
const (
	indexEmail          = "email-index"
	indexStatusExpiring = "status-expires_at-index"
)
