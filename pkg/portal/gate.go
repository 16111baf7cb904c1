package portal

import (
	"github.com/authqr/operator/pkg/authqrgo/routing/response"
)

// VerificationGate remembers the identity verified during this login. Alert
// detail is only exposed while it holds one. It is never persisted, so a
// restart requires verifying again even if the credential survives.
type VerificationGate struct {
	identity *response.VerifiedIdentity
	count    int
}

func NewVerificationGate() *VerificationGate {
	return &VerificationGate{}
}

// Record opens the gate and returns the number of verifications so far.
func (g *VerificationGate) Record(identity response.VerifiedIdentity) int {
	g.identity = &identity
	g.count++
	return g.count
}

// Close drops the identity but keeps the counter.
func (g *VerificationGate) Close() {
	g.identity = nil
}

func (g *VerificationGate) Clear() {
	g.identity = nil
	g.count = 0
}

func (g *VerificationGate) IsOpen() bool {
	return !g.identity.IsEmpty()
}

func (g *VerificationGate) Identity() (response.VerifiedIdentity, bool) {
	if !g.IsOpen() {
		return response.VerifiedIdentity{}, false
	}
	return *g.identity, true
}

func (g *VerificationGate) Count() int {
	return g.count
}
