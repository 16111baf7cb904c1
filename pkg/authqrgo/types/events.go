package types

type LogoutReason string

const (
	LogoutRequested      LogoutReason = "requested"
	LogoutSessionExpired LogoutReason = "session_expired"
)

type SessionState string

const (
	StateLoggedOut  SessionState = "logged_out"
	StateUnverified SessionState = "logged_in_unverified"
	StateVerified   SessionState = "logged_in_verified"
)

func (s SessionState) LoggedIn() bool {
	return s == StateUnverified || s == StateVerified
}
