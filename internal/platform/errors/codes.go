// Package errors provides coded domain errors that survive the gRPC boundary
// and render through localized message catalogs.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeRecordExists    Code = "RECORD_EXISTS"
	CodeRateLimited     Code = "RATE_LIMITED"

	// Governance errors
	CodeRegistryNotFound        Code = "REGISTRY_NOT_FOUND"
	CodeInsufficientVotingPower Code = "INSUFFICIENT_VOTING_POWER"
	CodeProposalNotFound        Code = "PROPOSAL_NOT_FOUND"
	CodeProposalNotActive       Code = "PROPOSAL_NOT_ACTIVE"
	CodeAlreadyVoted            Code = "ALREADY_VOTED"
	CodeVotingPeriodNotEnded    Code = "VOTING_PERIOD_NOT_ENDED"
	CodeAlreadyExecuted         Code = "ALREADY_EXECUTED"

	// Escrow errors
	CodeWagerNotFound       Code = "WAGER_NOT_FOUND"
	CodeWagerInvalid        Code = "WAGER_INVALID"
	CodeWagerNotActive      Code = "WAGER_NOT_ACTIVE"
	CodeWagerNotDisputed    Code = "WAGER_NOT_DISPUTED"
	CodeWagerNotExpired     Code = "WAGER_NOT_EXPIRED"
	CodeWagerAlreadySettled Code = "WAGER_ALREADY_SETTLED"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeInvalidWinner       Code = "INVALID_WINNER"
	CodeTimeoutNotElapsed   Code = "TIMEOUT_NOT_ELAPSED"

	// Staking errors
	CodePoolNotFound      Code = "POOL_NOT_FOUND"
	CodeStakeNotFound     Code = "STAKE_NOT_FOUND"
	CodeInsufficientStake Code = "INSUFFICIENT_STAKE"
	CodeStakeLocked       Code = "STAKE_LOCKED"
	CodeNotOwner          Code = "NOT_OWNER"

	// Value errors
	CodeArithmeticOverflow Code = "ARITHMETIC_OVERFLOW"
	CodeInsufficientFunds  Code = "INSUFFICIENT_FUNDS"
	CodeTokenConsumed      Code = "TOKEN_CONSUMED"
	CodeTokenNotEmpty      Code = "TOKEN_NOT_EMPTY"
	CodeCapabilityMismatch Code = "CAPABILITY_MISMATCH"

	// Capability grant errors
	CodeCapabilityInvalid Code = "CAPABILITY_INVALID"
	CodeCapabilityExpired Code = "CAPABILITY_EXPIRED"
	CodeCapabilityScope   Code = "CAPABILITY_SCOPE"

	// Journal errors
	CodeJournalIntegrity Code = "JOURNAL_INTEGRITY"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeInvalidArgument,
		CodeWagerInvalid,
		CodeInvalidWinner:
		return codes.InvalidArgument

	case CodeRegistryNotFound,
		CodeProposalNotFound,
		CodeWagerNotFound,
		CodePoolNotFound,
		CodeStakeNotFound:
		return codes.NotFound

	case CodeRecordExists,
		CodeAlreadyVoted:
		return codes.AlreadyExists

	case CodeUnauthorized,
		CodeNotOwner,
		CodeCapabilityScope,
		CodeCapabilityMismatch:
		return codes.PermissionDenied

	case CodeCapabilityInvalid,
		CodeCapabilityExpired:
		return codes.Unauthenticated

	case CodeInsufficientVotingPower,
		CodeProposalNotActive,
		CodeVotingPeriodNotEnded,
		CodeAlreadyExecuted,
		CodeWagerNotActive,
		CodeWagerNotDisputed,
		CodeWagerNotExpired,
		CodeWagerAlreadySettled,
		CodeTimeoutNotElapsed,
		CodeInsufficientStake,
		CodeStakeLocked,
		CodeInsufficientFunds,
		CodeTokenConsumed,
		CodeTokenNotEmpty:
		return codes.FailedPrecondition

	case CodeArithmeticOverflow:
		return codes.OutOfRange

	case CodeRateLimited:
		return codes.ResourceExhausted

	case CodeJournalIntegrity:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}
