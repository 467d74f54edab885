package constants

import "time"

// Context keys
const (
	ContextKeyUser = "user"
)

// Token settings
const (
	TokenCookieName = "token"
	TokenTTL        = 7 * 24 * time.Hour
)

// Validation limits
const (
	MinTitleLength = 3
)

// Dashboard settings
const (
	RecentTaskLimit = 10
)
