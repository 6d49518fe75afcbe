package service

import (
	"context"
	"strings"

	"payflow/internal/core/ports"
)

// simulatedAuthorizer stands in for a real acquiring-bank integration.
// It authorizes every attempt except ones that opt into a deterministic
// decline for testing: a upi VPA whose local-part is "fail" (e.g. fail@upi).
type simulatedAuthorizer struct{}

// NewAuthorizationSimulator creates the default AuthorizationSimulator.
func NewAuthorizationSimulator() ports.AuthorizationSimulator {
	return &simulatedAuthorizer{}
}

func (s *simulatedAuthorizer) Authorize(_ context.Context, attempt ports.FraudAttempt, _ bool) ports.AuthorizationDecision {
	if strings.HasPrefix(strings.ToLower(attempt.VPA), "fail@") {
		return ports.AuthorizationDecision{
			Authorized:  false,
			ErrorCode:   "simulator_declined",
			ErrorReason: "the acquiring simulator declined this attempt",
		}
	}
	return ports.AuthorizationDecision{Authorized: true}
}
