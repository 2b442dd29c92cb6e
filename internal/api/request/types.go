package request

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the request body for admin user updates.
// Absent fields are left unchanged.
type UpdateUserRequest struct {
	Name       *string `json:"name,omitempty"`
	Role       *string `json:"role,omitempty"`
	PlayerType *string `json:"player_type,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
	IsArchived *bool   `json:"is_archived,omitempty"`
}

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	Date           string `json:"date,omitempty"` // RFC 3339; defaults to now
	Notes          string `json:"notes,omitempty"`
	HostLocationID string `json:"host_location_id,omitempty"`
}

// UpdateSessionRequest is the request body for session state transitions.
// Action selects the transition; the other fields apply to specific actions.
type UpdateSessionRequest struct {
	Action         string  `json:"action"` // close | reopen | archive | unarchive | notes | date | host_location
	Notes          *string `json:"notes,omitempty"`
	Date           *string `json:"date,omitempty"` // RFC 3339
	HostLocationID *string `json:"host_location_id,omitempty"`
}

// JoinSessionRequest is the request body for adding a player
type JoinSessionRequest struct {
	UserID string `json:"user_id"`
}

// PlayerCommandRequest is the request body for per-player ledger commands
type PlayerCommandRequest struct {
	Command string `json:"command"` // buy_in | remove_buy_in | sell_buy_in | cash_out | undo_cash_out
	BuyerID string `json:"buyer_id,omitempty"`
	Amount  *int   `json:"amount,omitempty"`
}

// RecordSpecialHandRequest is the request body for recording a special hand
type RecordSpecialHandRequest struct {
	PlayerID    string `json:"player_id"`
	HandType    string `json:"hand_type"`
	Cards       string `json:"cards,omitempty"`
	Description string `json:"description,omitempty"`
}
