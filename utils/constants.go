package utils

import "time"

// General Configuration
const (
	BotName  = "RaceMaster"
	BotColor = 0xE74C3C
)

// Embed colors
const (
	ColorSuccess = 0x2ECC71
	ColorError   = 0xFF0000
	ColorWarning = 0xF39C12
	ColorNeutral = 0x5865F2
	ColorGold    = 0xFFD700
)

// Leaderboard categories
const (
	CategoryTrack  = "track"
	CategoryStreet = "street"
)

// Leaderboard rules
const (
	BoardSize      = 10
	SubmitCooldown = 24 * time.Hour
)

// Random draw settings
const (
	DrawWindow      = 60 * time.Minute
	DrawPrecision   = 2
	DrawRetryBudget = 64
)

// Persisted document names
const (
	DocLeaderboard = "leaderboard"
	DocPending     = "pending"
	DocCooldowns   = "cooldowns"
)
