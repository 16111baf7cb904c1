package portal

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/authqr/operator/pkg/authqrgo/credentials"
	"github.com/authqr/operator/pkg/authqrgo/routing/response"
)

// Session is the in-memory side of an operator login: the credential plus
// everything fetched with it. The Controller owns it and serializes access.
type Session struct {
	log         zerolog.Logger
	credentials *credentials.Credentials

	id     string
	alerts []response.EmergencyAlert
	vitals *response.VitalSignsSample
}

func NewSession(creds *credentials.Credentials, logger zerolog.Logger) *Session {
	if creds == nil {
		creds = credentials.NewCredentials()
	}
	return &Session{
		log:         logger,
		credentials: creds,
	}
}

// SetCredential stores the bearer token. A failure to persist it is logged
// and otherwise ignored: the session still works until the process exits.
func (s *Session) SetCredential(token string) {
	if err := s.credentials.Set(credentials.AdminToken, token); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist credential")
	}
}

// ClearCredential forgets the token and everything fetched with it.
func (s *Session) ClearCredential() {
	if err := s.credentials.Delete(credentials.AdminToken); err != nil {
		s.log.Warn().Err(err).Msg("Failed to remove persisted credential")
	}
	s.id = ""
	s.alerts = nil
	s.vitals = nil
}

func (s *Session) IsAuthenticated() bool {
	return !s.credentials.IsEmpty(credentials.AdminToken)
}

func (s *Session) Token() string {
	return s.credentials.Get(credentials.AdminToken)
}

func (s *Session) ID() string {
	return s.id
}

// begin starts a fresh session id and drops data fetched under the old one.
func (s *Session) begin() string {
	s.id = uuid.NewString()
	s.alerts = nil
	s.vitals = nil
	return s.id
}

func (s *Session) findAlert(id int64) (response.EmergencyAlert, bool) {
	for _, alert := range s.alerts {
		if alert.ID == id {
			return alert, true
		}
	}
	return response.EmergencyAlert{}, false
}

func (s *Session) unresolvedCount() int {
	count := 0
	for _, alert := range s.alerts {
		if !alert.Resolved {
			count++
		}
	}
	return count
}
