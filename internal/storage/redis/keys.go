package redis

import (
	"fmt"

	"github.com/mcoot/pokernight-go/internal/model"
)

// Key prefix for all ledger data
const keyPrefix = "pokernight"

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> user_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// usersIndexKey returns the Redis key for the SET of all user ids
func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}

// credentialsKey returns the Redis key for a user's Credentials
func credentialsKey(userID model.UserID) string {
	return fmt.Sprintf("%s:credentials:%s", keyPrefix, userID)
}

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionsIndexKey returns the Redis key for the SET of all session ids
func sessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// transactionLogKey returns the Redis key for a session's transaction log
func transactionLogKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:txlog:%s", keyPrefix, sessionID)
}

// transfersKey returns the Redis key for a session's buy-in transfer list
func transfersKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:transfers:%s", keyPrefix, sessionID)
}

// specialHandKey returns the Redis key for a SpecialHand
func specialHandKey(id model.SpecialHandID) string {
	return fmt.Sprintf("%s:special_hand:%s", keyPrefix, id)
}

// specialHandsForSessionIndexKey returns the Redis key for the SET of special
// hand ids recorded in a session
func specialHandsForSessionIndexKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:idx:special_hands_for_session:%s", keyPrefix, sessionID)
}
