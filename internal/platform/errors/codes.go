// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Ledger errors
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	CodeInvalidAmount     Code = "INVALID_AMOUNT"
	CodeUnknownPool       Code = "UNKNOWN_POOL"
	CodeCharacterLocked   Code = "CHARACTER_LOCKED"

	// Power progression errors
	CodeAlreadyUnlocked     Code = "ALREADY_UNLOCKED"
	CodeMaxRankReached      Code = "MAX_RANK_REACHED"
	CodePrerequisiteMissing Code = "PREREQUISITE_MISSING"
	CodeLevelTooLow         Code = "LEVEL_TOO_LOW"
	CodePowerNotUnlocked    Code = "POWER_NOT_UNLOCKED"
	CodePowerOutOfScope     Code = "POWER_OUT_OF_SCOPE"
	CodeCatalogInvalid      Code = "CATALOG_INVALID"

	// Adherence and strategy errors
	CodeInvalidScore    Code = "INVALID_SCORE"
	CodeInvalidStrategy Code = "INVALID_STRATEGY"

	// Autonomous decision errors
	CodeInvalidDecision     Code = "INVALID_DECISION"
	CodeProviderUnavailable Code = "PROVIDER_UNAVAILABLE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidAmount,
		CodeUnknownPool,
		CodeInvalidScore,
		CodeInvalidStrategy,
		CodeCatalogInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeInsufficientFunds,
		CodeCharacterLocked,
		CodeMaxRankReached,
		CodePrerequisiteMissing,
		CodeLevelTooLow,
		CodePowerNotUnlocked,
		CodePowerOutOfScope,
		CodeInvalidDecision:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeAlreadyUnlocked:
		return codes.AlreadyExists

	// Unavailable - upstream collaborator failed
	case CodeProviderUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}
