package chat

import "strings"

// Deduplication keys give each logical conversation a single canonical row:
// one direct chat per unordered user pair, one saved chat per user. Groups
// carry no key and may exist in any number.

// DirectKey returns the canonical identity key of the direct chat between two
// users. The pair is ordered lexicographically so both orderings collide.
func DirectKey(userA, userB string) string {
	lo, hi := userA, userB
	if strings.Compare(lo, hi) > 0 {
		lo, hi = hi, lo
	}
	return "direct:" + lo + "_" + hi
}

// SavedKey returns the identity key of a user's saved-messages chat.
func SavedKey(userID string) string {
	return "saved:" + userID
}
