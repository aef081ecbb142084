package cqrs

// ---------- Account queries ----------

// GetAccountQuery fetches a single account by account number.
type GetAccountQuery struct {
	AccountNumber    string
	RequestingUserID string
}

// ListAccountsQuery fetches all accounts belonging to a user.
type ListAccountsQuery struct {
	UserID string
}

// ---------- Transfer queries ----------

// ListTransfersQuery fetches the history of every transfer where the user
// owns either side, newest first.
type ListTransfersQuery struct {
	UserID string
}

// ListAccountTransfersQuery fetches all transfers touching one account,
// newest first.
type ListAccountTransfersQuery struct {
	AccountNumber    string
	RequestingUserID string
}
