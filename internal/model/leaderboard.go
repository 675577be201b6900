package model

// LeaderboardEntry is a derived, read-time projection — never persisted.
// Rank is the 1-based position after tie-breaking. Because ties on score are
// broken by username, two entries never share a rank.
type LeaderboardEntry struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
	Rank     int    `json:"rank"`
}
