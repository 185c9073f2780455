package ledger

import (
	"errors"
	"log"
	"strings"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/capability"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/value"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/service"
)

// Server implements LedgerServer over a service.Ledger.
type Server struct {
	ledger   *service.Ledger
	verifier *capability.Verifier
	logf     func(string, ...any)
}

var _ LedgerServer = (*Server)(nil)

// NewServer creates a ledger API server. A nil verifier refuses every grant.
func NewServer(ledger *service.Ledger, verifier *capability.Verifier, logf func(string, ...any)) (*Server, error) {
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if logf == nil {
		logf = log.Printf
	}
	return &Server{ledger: ledger, verifier: verifier, logf: logf}, nil
}

// withdraw takes amount from the wallet of addr, a verified caller. restore
// returns whatever is still live in the token to the wallet and must run
// before the handler returns.
func (s *Server) withdraw(addr string, amount uint64) (token *value.Token, restore func(), err error) {
	token, err = s.ledger.Treasury.Take(addr, amount)
	if err != nil {
		return nil, nil, err
	}
	return token, func() {
		if !token.Live() {
			return
		}
		if err := s.ledger.Treasury.Give(addr, token); err != nil {
			s.logf("ledger api: return %d to %s: %v", token.Value(), addr, err)
		}
	}, nil
}

// pay deposits token into addr's wallet.
func (s *Server) pay(addr string, token *value.Token) (uint64, error) {
	amount := token.Value()
	if err := s.ledger.Treasury.Give(addr, token); err != nil {
		return 0, err
	}
	return amount, nil
}

func (s *Server) credential(grant, field string, scope capability.Scope) (capability.Credential, error) {
	if strings.TrimSpace(grant) == "" {
		return capability.Credential{}, required(field)
	}
	return s.verifier.Verify(grant, scope)
}

func required(field string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidArgument, field+" is required", map[string]string{"field": field})
}
