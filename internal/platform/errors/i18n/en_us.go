package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeUnknownPool         = "UNKNOWN_POOL"
	CodeCharacterLocked     = "CHARACTER_LOCKED"
	CodeAlreadyUnlocked     = "ALREADY_UNLOCKED"
	CodeMaxRankReached      = "MAX_RANK_REACHED"
	CodePrerequisiteMissing = "PREREQUISITE_MISSING"
	CodeLevelTooLow         = "LEVEL_TOO_LOW"
	CodePowerNotUnlocked    = "POWER_NOT_UNLOCKED"
	CodePowerOutOfScope     = "POWER_OUT_OF_SCOPE"
	CodeCatalogInvalid      = "CATALOG_INVALID"
	CodeInvalidScore        = "INVALID_SCORE"
	CodeInvalidStrategy     = "INVALID_STRATEGY"
	CodeInvalidDecision     = "INVALID_DECISION"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeNotFound            = "NOT_FOUND"
)

var enUSMessages = map[Code]string{
	CodeInsufficientFunds:   "Not enough {{.pool}} points: need {{.need}}, have {{.have}}.",
	CodeInvalidAmount:       "The point amount must be greater than zero.",
	CodeUnknownPool:         "Unknown point pool {{.pool}}.",
	CodeCharacterLocked:     "This character cannot change their powers right now.",
	CodeAlreadyUnlocked:     "That power is already unlocked.",
	CodeMaxRankReached:      "That power is already at its maximum rank.",
	CodePrerequisiteMissing: "Unlock {{.prerequisite}} first.",
	CodeLevelTooLow:         "Requires level {{.required}}.",
	CodePowerNotUnlocked:    "Unlock that power before ranking it up.",
	CodePowerOutOfScope:     "That power is not available to this character.",
	CodeCatalogInvalid:      "The power catalog is invalid.",
	CodeInvalidScore:        "Scores must be between 0 and 100.",
	CodeInvalidStrategy:     "The bidding strategy is invalid.",
	CodeInvalidDecision:     "The character made an invalid choice.",
	CodeProviderUnavailable: "The character could not make up their mind. Try again later.",
	CodeNotFound:            "Not found.",
}
