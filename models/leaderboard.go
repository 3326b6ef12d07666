package models

// LeaderboardEntry is one rendered leaderboard row.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Points   int64  `json:"points"`
	Streak   int64  `json:"streak"`
	Badge    string `json:"badge,omitempty"`
}

// Standing is one player's global position, reported even when they sit
// outside the visible top rows. Rank is nil until the player has scored.
type Standing struct {
	Username string `json:"username"`
	Rank     *int64 `json:"rank"`
	Points   int64  `json:"points"`
	Streak   int64  `json:"streak"`
	Badge    string `json:"badge,omitempty"`
}
