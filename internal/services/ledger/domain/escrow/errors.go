package escrow

import apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"

var (
	ErrWagerNotFound      = apperrors.New(apperrors.CodeWagerNotFound, "wager not found")
	ErrWagerInvalid       = apperrors.New(apperrors.CodeWagerInvalid, "wager is invalid")
	ErrNotActive          = apperrors.New(apperrors.CodeWagerNotActive, "wager not active")
	ErrNotDisputed        = apperrors.New(apperrors.CodeWagerNotDisputed, "wager not disputed")
	ErrNotExpired         = apperrors.New(apperrors.CodeWagerNotExpired, "wager not expired")
	ErrAlreadySettled     = apperrors.New(apperrors.CodeWagerAlreadySettled, "wager already settled")
	ErrUnauthorized       = apperrors.New(apperrors.CodeUnauthorized, "caller is not the resolver")
	ErrInvalidWinner      = apperrors.New(apperrors.CodeInvalidWinner, "winner is not a player")
	ErrTimeoutNotElapsed  = apperrors.New(apperrors.CodeTimeoutNotElapsed, "timeout not elapsed")
	ErrArithmeticOverflow = apperrors.New(apperrors.CodeArithmeticOverflow, "wager pot overflows")
)
