package templates

import "github.com/mcoot/mogg-backend/internal/model"

// LandingData is the data rendered on the landing page
type LandingData struct {
	Title   string
	Leaders []model.LeaderboardRow
	// Unavailable is set when the leaderboard could not be loaded
	Unavailable bool
}
