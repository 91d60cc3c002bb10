package constants

// Centralized constants for headers, env keys and OpenAI integration.
const (
	// Environment variable keys
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvTelegramToken = "TELEGRAM_TOKEN"
	EnvConfigPath    = "MOODSPRINT_CONFIG"
	EnvDBPath        = "MOODSPRINT_DB"
	EnvServerAddr    = "MOODSPRINT_ADDR"

	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderUserEmail     = "X-User-Email"
	HeaderUserName      = "X-User-Name"

	ContentTypeJSON = "application/json"
	ContentTypePNG  = "image/png"

	// Authorization prefix
	BearerPrefix = "Bearer "

	// OpenAI API endpoints and base URL
	OpenAIBaseURL               = "https://api.openai.com"
	OpenAIImagesGenerationsPath = "/v1/images/generations"

	// OpenAI model names and typical parameters
	OpenAIImageModel          = "gpt-image-1"
	OpenAIImageSizeDefault    = "1024x1024"
	OpenAIImageQualityDefault = "low"
)

// Routes used by the backend router
const (
	RouteAPIPrefix     = "/api"
	RouteProfile       = "/profile"
	RouteCards         = "/cards"
	RouteMonsters      = "/monsters"
	RouteLeaderboard   = "/leaderboard"
	RouteBattles       = "/battles"
	RouteActiveBattle  = "/battles/active"
	RouteBattleRound   = "/battles/:battleID/round"
	RouteBattleAbandon = "/battles/:battleID/abandon"
	RouteEnergySpend   = "/energy/spend"
	RouteProgressXP    = "/progress/xp"
	RouteStreakCheck   = "/streak/check"
	RouteCardAsset     = "/assets/cards/:templateID"
)

// Common JSON response keys
const (
	JSONKeyError = "error"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest      = "Invalid request"
	ErrUserRequired        = "X-User-Email header is required"
	ErrProfileNotFound     = "Profile not found"
	ErrNoActiveBattle      = "No active battle"
	ErrFailedFetchCards    = "Failed to fetch cards"
	ErrFailedFetchMonsters = "Failed to fetch monsters"
	ErrFailedFetchLeaders  = "Failed to fetch leaderboard"
	ErrCardImageNotFound   = "Card image not found"
)

// Logging field names
const (
	LogFieldUserID   = "user_id"
	LogFieldBattleID = "battle_id"
	LogFieldMonster  = "monster"
	LogFieldLevel    = "level"
	LogFieldKey      = "key"
	LogFieldName     = "name"
	LogFieldAddr     = "addr"
	LogFieldJobID    = "job_id"
	LogFieldJobKind  = "job_kind"
	LogFieldAttempt  = "attempt"
)
