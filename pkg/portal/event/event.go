package event

import (
	"github.com/authqr/operator/pkg/authqrgo/routing/response"
	"github.com/authqr/operator/pkg/authqrgo/types"
)

type LoggedIn struct {
	SessionID string
	// Resumed is set when the credential came from persisted state rather
	// than a fresh login.
	Resumed bool
}

type LoggedOut struct {
	SessionID string
	Reason    types.LogoutReason
}

type SessionExpired struct {
	SessionID string
	Message   string
}

// AlertsUpdated carries only the unresolved count. Alert contents are read
// through Controller.Snapshot so they stay behind the verification gate.
type AlertsUpdated struct {
	Total      int
	Unresolved int
}

// VitalsUpdated announces a new sample without its readings, for the same
// reason as AlertsUpdated.
type VitalsUpdated struct {
	LastUpdated types.Timestamp
}

type IdentityVerified struct {
	Identity response.VerifiedIdentity
	Count    int
}

type AlertResolved struct {
	AlertID int64
}

type ClockTick struct {
	Elapsed   int64
	Formatted string
}
