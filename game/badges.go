package game

// Streak thresholds for leaderboard badges.
const (
	hotStreakMin  = 3
	megaStreakMin = 5
)

// BadgeFor derives the display badge for a streak count. It is a pure
// read-side decoration; nothing is stored.
func BadgeFor(streak int64) string {
	switch {
	case streak >= megaStreakMin:
		return "MegaStreak"
	case streak >= hotStreakMin:
		return "HotStreak"
	default:
		return ""
	}
}
