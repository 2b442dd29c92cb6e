package model

import "time"

// SpecialHandID uniquely identifies a special hand record
type SpecialHandID string

// HandType enumerates the rare hands that earn an asterisk
type HandType string

const (
	HandFourOfAKindJacks  HandType = "FOUR_OF_A_KIND_JACKS"
	HandFourOfAKindQueens HandType = "FOUR_OF_A_KIND_QUEENS"
	HandFourOfAKindKings  HandType = "FOUR_OF_A_KIND_KINGS"
	HandFourOfAKindAces   HandType = "FOUR_OF_A_KIND_ACES"
	HandStraightFlush     HandType = "STRAIGHT_FLUSH"
	HandRoyalFlush        HandType = "ROYAL_FLUSH"
)

// handStrength ranks hand types; higher is stronger
var handStrength = map[HandType]int{
	HandFourOfAKindJacks:  1,
	HandFourOfAKindQueens: 2,
	HandFourOfAKindKings:  3,
	HandFourOfAKindAces:   4,
	HandStraightFlush:     5,
	HandRoyalFlush:        6,
}

// handLabels are display names for each hand type
var handLabels = map[HandType]string{
	HandFourOfAKindJacks:  "Four Jacks",
	HandFourOfAKindQueens: "Four Queens",
	HandFourOfAKindKings:  "Four Kings",
	HandFourOfAKindAces:   "Four Aces",
	HandStraightFlush:     "Straight Flush",
	HandRoyalFlush:        "Royal Flush",
}

// Strength returns the hand's rank, or 0 for an unrecognized type
func (h HandType) Strength() int {
	return handStrength[h]
}

// Valid reports whether the hand type is one of the recognized values
func (h HandType) Valid() bool {
	_, ok := handStrength[h]
	return ok
}

// Label returns the hand's display name
func (h HandType) Label() string {
	if label, ok := handLabels[h]; ok {
		return label
	}
	return string(h)
}

// SpecialHand records a rare-event achievement during a session
type SpecialHand struct {
	ID          SpecialHandID
	SessionID   SessionID
	PlayerID    UserID
	HandType    HandType
	Cards       string // free text, e.g. "As Ks Qs Js Ts"
	Description string
	CreatedAt   time.Time
}
