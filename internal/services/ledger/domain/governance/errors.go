package governance

import apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"

// Sentinels for errors.Is matching; comparison is by code.
var (
	ErrRegistryNotFound        = apperrors.New(apperrors.CodeRegistryNotFound, "registry not found")
	ErrInsufficientVotingPower = apperrors.New(apperrors.CodeInsufficientVotingPower, "insufficient voting power")
	ErrProposalNotFound        = apperrors.New(apperrors.CodeProposalNotFound, "proposal not found")
	ErrProposalNotActive       = apperrors.New(apperrors.CodeProposalNotActive, "proposal not active")
	ErrAlreadyVoted            = apperrors.New(apperrors.CodeAlreadyVoted, "already voted")
	ErrVotingPeriodNotEnded    = apperrors.New(apperrors.CodeVotingPeriodNotEnded, "voting period not ended")
	ErrAlreadyExecuted         = apperrors.New(apperrors.CodeAlreadyExecuted, "proposal already executed")
)
