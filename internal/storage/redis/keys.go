package redis

import "fmt"

// Key prefix for all mogg data
const keyPrefix = "mogg"

// scoreKey returns the Redis key for the HASH holding a player's global score
func scoreKey(playerKey string) string {
	return fmt.Sprintf("%s:score:%s", keyPrefix, playerKey)
}

// leaderboardKey returns the Redis key for the ZSET of player keys by score
func leaderboardKey() string {
	return fmt.Sprintf("%s:leaderboard", keyPrefix)
}

// profileKey returns the Redis key for a Profile
func profileKey(playerKey string) string {
	return fmt.Sprintf("%s:profile:%s", keyPrefix, playerKey)
}

// Hash fields of a score record
const (
	fieldKey       = "key"
	fieldName      = "name"
	fieldScore     = "score"
	fieldUpdatedAt = "updated_at"
)
