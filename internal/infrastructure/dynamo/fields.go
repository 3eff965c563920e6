package dynamo

// DynamoDB attribute names shared by items, keys and condition expressions.
const (
	fieldEmail          = "email"
	fieldPasswordHash   = "password_hash"
	fieldRequires2FA    = "requires_2fa"
	fieldToken          = "token"
	fieldLoginAttemptID = "login_attempt_id"
	fieldCode           = "code"
	fieldExpiresAt      = "expires_at"
)
