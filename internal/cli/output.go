package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case CreateRoomResult:
		o.printf("Passcode: %s\n", v.Passcode)
	case RoomStatus:
		o.printRoomStatus(v)
	case ToggleTriesResult:
		o.printf("Infinite tries: %s\n", yesNo(v.InfiniteTries))
	case HasPlayedResult:
		o.printf("Has played: %s\n", yesNo(v.HasPlayed))
		o.printf("Infinite tries: %s\n", yesNo(v.InfiniteTries))
	case []LeaderboardEntry:
		o.printLeaderboard(v)
	case BestScore:
		o.printf("Best: %d\n", v.Best)
	case Profile:
		o.printProfile(v)
	case GuestLoginResult:
		o.printf("Username: %s\n", v.Username)
		o.printf("Returning: %s\n", yesNo(v.IsReturning))
	case AnonymousResult:
		o.printf("Username: %s\n", v.Username)
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// CreateRoomResult response type (matches API)
type CreateRoomResult struct {
	Passcode string `json:"passcode"`
}

// RoomStatus response type
type RoomStatus struct {
	Success bool `json:"success"`
}

// ToggleTriesResult response type
type ToggleTriesResult struct {
	InfiniteTries bool `json:"infiniteTries"`
}

// HasPlayedResult response type
type HasPlayedResult struct {
	HasPlayed     bool `json:"hasPlayed"`
	InfiniteTries bool `json:"infiniteTries"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	PlayerName string `json:"playerName"`
	Score      int64  `json:"score"`
}

// BestScore response type
type BestScore struct {
	Best int64 `json:"best"`
}

// Profile response type
type Profile struct {
	Username             string   `json:"username"`
	Coins                int64    `json:"coins"`
	UnlockedHammers      []string `json:"unlockedHammers"`
	EquippedHammer       string   `json:"equippedHammer"`
	UnlockedAchievements []string `json:"unlockedAchievements"`
}

// GuestLoginResult response type
type GuestLoginResult struct {
	Username    string `json:"username"`
	IsReturning bool   `json:"isReturning"`
}

// AnonymousResult response type
type AnonymousResult struct {
	Username string `json:"username"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoomStatus(s RoomStatus) {
	if s.Success {
		o.printf("Room is active\n")
		return
	}
	o.printf("Room is not active\n")
}

func (o *Output) printLeaderboard(rows []LeaderboardEntry) {
	if len(rows) == 0 {
		o.printf("No scores yet\n")
		return
	}
	for i, r := range rows {
		o.printf("%2d. %-20s %d\n", i+1, r.PlayerName, r.Score)
	}
}

func (o *Output) printProfile(p Profile) {
	o.printf("Username: %s\n", p.Username)
	o.printf("Coins: %d\n", p.Coins)
	o.printf("Hammers: %s\n", strings.Join(p.UnlockedHammers, ", "))
	o.printf("Equipped: %s\n", p.EquippedHammer)
	if len(p.UnlockedAchievements) > 0 {
		o.printf("Achievements: %s\n", strings.Join(p.UnlockedAchievements, ", "))
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
