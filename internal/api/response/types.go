package response

import "github.com/mcoot/mogg-backend/internal/model"

// CreateRoomResponse is returned when a room is created
type CreateRoomResponse struct {
	Passcode string `json:"passcode"`
}

// RoomStatusResponse confirms that a room is live
type RoomStatusResponse struct {
	Success bool `json:"success"`
}

// ToggleTriesResponse carries the room's new infinite tries setting
type ToggleTriesResponse struct {
	InfiniteTries bool `json:"infiniteTries"`
}

// HasPlayedResponse reports whether a player has a score in a room
type HasPlayedResponse struct {
	HasPlayed     bool `json:"hasPlayed"`
	InfiniteTries bool `json:"infiniteTries"`
}

// LeaderboardEntry is one row of a room or global leaderboard
type LeaderboardEntry struct {
	PlayerName string `json:"playerName"`
	Score      int64  `json:"score"`
}

// LeaderboardFromScores converts room ledger entries
func LeaderboardFromScores(entries []model.ScoreEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{PlayerName: e.PlayerName, Score: e.Score}
	}
	return out
}

// LeaderboardFromRows converts global leaderboard rows
func LeaderboardFromRows(rows []model.LeaderboardRow) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(rows))
	for i, r := range rows {
		out[i] = LeaderboardEntry{PlayerName: r.PlayerName, Score: r.Score}
	}
	return out
}

// BestScoreResponse is a player's global best
type BestScoreResponse struct {
	Best int64 `json:"best"`
}

// Profile represents a player profile in API responses
type Profile struct {
	Username             string   `json:"username"`
	Coins                int64    `json:"coins"`
	UnlockedHammers      []string `json:"unlockedHammers"`
	EquippedHammer       string   `json:"equippedHammer"`
	UnlockedAchievements []string `json:"unlockedAchievements"`
}

// ProfileFromModel converts model.Profile
func ProfileFromModel(p *model.Profile) Profile {
	hammers := p.UnlockedHammers
	if hammers == nil {
		hammers = []string{}
	}
	achievements := p.UnlockedAchievements
	if achievements == nil {
		achievements = []string{}
	}
	return Profile{
		Username:             p.Username,
		Coins:                p.Coins,
		UnlockedHammers:      hammers,
		EquippedHammer:       p.EquippedHammer,
		UnlockedAchievements: achievements,
	}
}

// GuestLoginResponse is returned by guest login
type GuestLoginResponse struct {
	Username    string `json:"username"`
	IsReturning bool   `json:"isReturning"`
}

// AnonymousResponse carries a freshly generated anonymous username
type AnonymousResponse struct {
	Username string `json:"username"`
}

// HealthResponse reports service health
type HealthResponse struct {
	Status string `json:"status"`
}
