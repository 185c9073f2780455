package engine

import (
	"errors"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/command"
)

var (
	// ErrCommandRegistryRequired indicates a missing command registry.
	ErrCommandRegistryRequired = errors.New("command registry is required")
	// ErrEventRegistryRequired indicates a missing event registry.
	ErrEventRegistryRequired = errors.New("event registry is required")
	// ErrStoreRequired indicates a missing event store.
	ErrStoreRequired = errors.New("event store is required")
	// ErrDeciderRequired indicates a missing decider.
	ErrDeciderRequired = errors.New("decider is required")
	// ErrFolderRequired indicates a missing fold function.
	ErrFolderRequired = errors.New("fold function is required")
	// ErrClockRequired indicates a missing clock.
	ErrClockRequired = errors.New("clock is required")
)

// RejectionError converts a decider rejection into an application error.
func RejectionError(rej command.Rejection) error {
	code := apperrors.Code(rej.Code)
	if code == "" {
		code = apperrors.CodeUnknown
	}
	message := rej.Message
	if message == "" {
		message = string(code)
	}
	return apperrors.WithMetadata(code, message, rej.Metadata)
}

// invalidCommand wraps envelope validation failures so they surface as
// INVALID_ARGUMENT while keeping the sentinel reachable with errors.Is.
func invalidCommand(err error) error {
	return apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err)
}
