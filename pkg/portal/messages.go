package portal

import (
	"errors"

	"github.com/authqr/operator/pkg/authqrgo"
)

// UserMessage turns an error from the controller or the backend client into
// text fit to show the operator.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	detail := authqrgo.Detail(err)
	switch {
	case errors.Is(err, authqrgo.ErrAuthExpired):
		return "Session expired. Please login again."
	case errors.Is(err, ErrNotLoggedIn):
		return "Please login first."
	case errors.Is(err, ErrAlertNotFound):
		return "No such alert."
	case errors.Is(err, ErrAlreadyResolved):
		return "This alert is already resolved."
	case errors.Is(err, ErrSessionChanged):
		return "The session changed before the request finished."
	case errors.Is(err, authqrgo.ErrAuth):
		return orDefault(detail, "Invalid credentials")
	case errors.Is(err, authqrgo.ErrValidation):
		return orDefault(detail, "Registration failed")
	case errors.Is(err, authqrgo.ErrVerification):
		if detail == "" {
			return "Verification failed"
		}
		return "Verification failed: " + detail
	case errors.Is(err, authqrgo.ErrTransport):
		return "Could not reach the server. Check your connection and try again."
	default:
		return orDefault(detail, err.Error())
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
