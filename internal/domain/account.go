package domain

// Account is a registered identity. It is created on signup and never
// mutated by this service.
type Account struct {
	Email        Email
	PasswordHash string
	Requires2FA  bool
}

// PendingTwoFA is the single outstanding challenge for an email.
type PendingTwoFA struct {
	Email          Email
	LoginAttemptID LoginAttemptID
	Code           TwoFACode
}
