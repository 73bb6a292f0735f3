package request

// UsernameRequest is the body of the owner-gated room endpoints and guest login
type UsernameRequest struct {
	Username string `json:"username"`
}

// SubmitScoreRequest is the body for room and global score submissions.
// Score is a pointer so a missing score can be told apart from zero.
type SubmitScoreRequest struct {
	PlayerName string `json:"playerName"`
	Score      *int64 `json:"score"`
}

// SyncProfileRequest is the body for replacing a profile's game state
type SyncProfileRequest struct {
	Coins                int64    `json:"coins"`
	UnlockedHammers      []string `json:"unlockedHammers"`
	EquippedHammer       string   `json:"equippedHammer"`
	UnlockedAchievements []string `json:"unlockedAchievements"`
}
