package domain

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code. Every code belongs to exactly one
// Class, which adapters use to pick a transport status.
type Code string

// Class groups codes by the stage at which they are detected.
type Class string

const (
	ClassValidation    Class = "validation"
	ClassState         Class = "state"
	ClassAuthorization Class = "authorization"
	ClassEconomic      Class = "economic"
	ClassNotFound      Class = "not_found"
	ClassExternal      Class = "external"
	ClassGuard         Class = "guard"
	ClassInternal      Class = "internal"
)

const (
	CodeUnknown Code = "UNKNOWN"

	// Validation: malformed parameters, always pre-flight.
	CodeZeroAddress           Code = "ZERO_ADDRESS"
	CodeZeroAmount            Code = "ZERO_AMOUNT"
	CodeInvalidAmount         Code = "INVALID_AMOUNT"
	CodeArrayLengthMismatch   Code = "ARRAY_LENGTH_MISMATCH"
	CodeBatchSizeOutOfRange   Code = "BATCH_SIZE_OUT_OF_RANGE"
	CodeStartNotInFuture      Code = "START_NOT_IN_FUTURE"
	CodeInvalidTimeWindow     Code = "INVALID_TIME_WINDOW"
	CodeDurationTooLong       Code = "DURATION_TOO_LONG"
	CodeNoDistributions       Code = "NO_DISTRIBUTIONS"
	CodeTooManyDistributions  Code = "TOO_MANY_DISTRIBUTIONS"
	CodePercentageTooLow      Code = "PERCENTAGE_TOO_LOW"
	CodePercentageSumInvalid  Code = "PERCENTAGE_SUM_INVALID"
	CodeInvalidDistribution   Code = "INVALID_DISTRIBUTION"
	CodeSameIdentity          Code = "SAME_IDENTITY"

	CodeRewardAssetNotSweepable Code = "REWARD_ASSET_NOT_SWEEPABLE"

	// State / lifecycle.
	CodeCampaignNotFound   Code = "CAMPAIGN_NOT_FOUND"
	CodeCampaignExists     Code = "CAMPAIGN_EXISTS"
	CodeCampaignClosed     Code = "CAMPAIGN_CLOSED"
	CodeCampaignNotStarted Code = "CAMPAIGN_NOT_STARTED"
	CodeCampaignStarted    Code = "CAMPAIGN_STARTED"
	CodeCampaignNotEnded   Code = "CAMPAIGN_NOT_ENDED"
	CodeNoAllocation       Code = "NO_ALLOCATION"
	CodePaused             Code = "PAUSED"
	CodeNotPaused          Code = "NOT_PAUSED"
	CodeNoPendingOwner     Code = "NO_PENDING_OWNER"
	CodeConflict           Code = "CONFLICT"

	// Authorization.
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeBlacklisted       Code = "BLACKLISTED"
	CodeNotAllowListed    Code = "NOT_ALLOW_LISTED"
	CodeOwnerNotBlockable Code = "OWNER_NOT_BLACKLISTABLE"

	// Economic invariants, checked after computation and before commit.
	CodeAlreadyAllocated         Code = "ALREADY_ALLOCATED"
	CodeAllocationExceedsReward  Code = "ALLOCATION_EXCEEDS_REWARD"
	CodeInsufficientFunding      Code = "INSUFFICIENT_FUNDING"
	CodeNothingToClaim           Code = "NOTHING_TO_CLAIM"
	CodeAmountExceedsClaimable   Code = "AMOUNT_EXCEEDS_CLAIMABLE"
	CodeClaimExceedsAllocation   Code = "CLAIM_EXCEEDS_ALLOCATION"
	CodeInsufficientBalance      Code = "INSUFFICIENT_BALANCE"
	CodeNothingToSweep           Code = "NOTHING_TO_SWEEP"
	CodeAmountOverflow           Code = "AMOUNT_OVERFLOW"

	// External collaborators.
	CodeLedgerFailure    Code = "LEDGER_FAILURE"
	CodeAllowListFailure Code = "ALLOW_LIST_FAILURE"

	// Guard.
	CodeReentrantCall Code = "REENTRANT_CALL"
)

// Class returns the taxonomy class of the code.
func (c Code) Class() Class {
	switch c {
	case CodeZeroAddress,
		CodeZeroAmount,
		CodeInvalidAmount,
		CodeArrayLengthMismatch,
		CodeBatchSizeOutOfRange,
		CodeStartNotInFuture,
		CodeInvalidTimeWindow,
		CodeDurationTooLong,
		CodeNoDistributions,
		CodeTooManyDistributions,
		CodePercentageTooLow,
		CodePercentageSumInvalid,
		CodeInvalidDistribution,
		CodeSameIdentity,
		CodeRewardAssetNotSweepable:
		return ClassValidation

	case CodeCampaignExists,
		CodeCampaignClosed,
		CodeCampaignNotStarted,
		CodeCampaignStarted,
		CodeCampaignNotEnded,
		CodeNoAllocation,
		CodePaused,
		CodeNotPaused,
		CodeNoPendingOwner,
		CodeConflict:
		return ClassState

	case CodeCampaignNotFound:
		return ClassNotFound

	case CodeUnauthorized,
		CodeBlacklisted,
		CodeNotAllowListed,
		CodeOwnerNotBlockable:
		return ClassAuthorization

	case CodeAlreadyAllocated,
		CodeAllocationExceedsReward,
		CodeInsufficientFunding,
		CodeNothingToClaim,
		CodeAmountExceedsClaimable,
		CodeClaimExceedsAllocation,
		CodeInsufficientBalance,
		CodeNothingToSweep,
		CodeAmountOverflow:
		return ClassEconomic

	case CodeLedgerFailure, CodeAllowListFailure:
		return ClassExternal

	case CodeReentrantCall:
		return ClassGuard

	default:
		return ClassInternal
	}
}

// Error is the domain error type. Metadata carries the values needed to
// diagnose the failure without re-querying state (actual vs expected).
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a domain error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates a domain error with diagnostic metadata.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates a domain error wrapping an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// GetCode extracts the code from any error, CodeUnknown for foreign errors.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error carries the given code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata extracts metadata from a domain error, nil otherwise.
func GetMetadata(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Metadata
	}
	return nil
}

// Sentinels for errors.Is comparisons. Matching is by code only.
var (
	ErrCampaignNotFound   = New(CodeCampaignNotFound, "campaign does not exist")
	ErrCampaignExists     = New(CodeCampaignExists, "campaign already exists")
	ErrCampaignClosed     = New(CodeCampaignClosed, "campaign already closed")
	ErrCampaignNotStarted = New(CodeCampaignNotStarted, "campaign has not started")
	ErrCampaignStarted    = New(CodeCampaignStarted, "campaign already started")
	ErrCampaignNotEnded   = New(CodeCampaignNotEnded, "campaign has not ended")
	ErrNoAllocation       = New(CodeNoAllocation, "recipient has no allocation")
	ErrPaused             = New(CodePaused, "engine is paused")
	ErrNotPaused          = New(CodeNotPaused, "engine is not paused")
	ErrNoPendingOwner     = New(CodeNoPendingOwner, "no pending owner")
	ErrConflict           = New(CodeConflict, "concurrent update, retry the operation")
	ErrUnauthorized       = New(CodeUnauthorized, "caller is not authorized")
	ErrBlacklisted        = New(CodeBlacklisted, "recipient is blacklisted")
	ErrNotAllowListed     = New(CodeNotAllowListed, "recipient is not on the allow-list")
	ErrOwnerNotBlockable  = New(CodeOwnerNotBlockable, "owner cannot be blacklisted")
	ErrAlreadyAllocated   = New(CodeAlreadyAllocated, "recipient already has an allocation")
	ErrNothingToClaim     = New(CodeNothingToClaim, "nothing to claim")
	ErrNothingToSweep     = New(CodeNothingToSweep, "nothing to sweep")
	ErrAmountOverflow     = New(CodeAmountOverflow, "amount overflow")
	ErrReentrantCall      = New(CodeReentrantCall, "re-entrant call")
	ErrZeroAddress        = New(CodeZeroAddress, "zero address")
	ErrZeroAmount         = New(CodeZeroAmount, "zero amount")
	ErrSameIdentity       = New(CodeSameIdentity, "old and new identity are the same")
)
