package model

import "time"

// GlobalScore is a player's persisted best score on the global leaderboard
type GlobalScore struct {
	PlayerKey  string    `json:"player_key"`  // canonical identity
	PlayerName string    `json:"player_name"` // name of the first submission
	Score      int64     `json:"score"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LeaderboardRow is a single ranked row of a leaderboard
type LeaderboardRow struct {
	PlayerName string
	Score      int64
}
