package staking

import apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"

var (
	ErrPoolNotFound       = apperrors.New(apperrors.CodePoolNotFound, "pool not found")
	ErrStakeNotFound      = apperrors.New(apperrors.CodeStakeNotFound, "stake not found")
	ErrInsufficientStake  = apperrors.New(apperrors.CodeInsufficientStake, "lock period below pool minimum")
	ErrStakeLocked        = apperrors.New(apperrors.CodeStakeLocked, "stake is locked")
	ErrNotOwner           = apperrors.New(apperrors.CodeNotOwner, "caller does not own the stake")
	ErrArithmeticOverflow = apperrors.New(apperrors.CodeArithmeticOverflow, "stake arithmetic overflows")
)
