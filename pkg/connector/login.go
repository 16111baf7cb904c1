package connector

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/authqr/operator/pkg/authqrgo/routing/payload"
	"github.com/authqr/operator/pkg/authqrgo/routing/response"
	"github.com/authqr/operator/pkg/authqrgo/types"
)

const qrImagePixels = 300

// UserCard is what an end user sees after registering or logging in.
type UserCard struct {
	UserID      string
	Name        string
	Email       string
	EncryptedQR string
	QRImageURL  string
}

// Login authenticates the operator and leaves the credential stored for the
// next run. The feed loop started by the login is stopped again.
func (oc *OperatorConnector) Login(ctx context.Context, username, password string) error {
	if err := oc.Controller.Login(ctx, username, password); err != nil {
		return err
	}
	oc.Controller.Shutdown()
	return nil
}

func (oc *OperatorConnector) RegisterUser(ctx context.Context, p payload.RegisterUserPayload) (*UserCard, error) {
	resp, err := oc.Client.RegisterUser(ctx, p)
	if err != nil {
		return nil, err
	}
	card := &UserCard{
		UserID:      resp.UserID,
		Name:        p.Name,
		Email:       p.Email,
		EncryptedQR: resp.EncryptedQR,
	}
	card.QRImageURL, err = oc.Client.QRImageURL(resp.QRPath.Or(""), resp.EncryptedQR, qrImagePixels)
	if err != nil {
		oc.Log.Warn().Err(err).Str("user_id", resp.UserID).Msg("No QR image for registered user")
	}
	return card, nil
}

func (oc *OperatorConnector) LoginUser(ctx context.Context, email, phone string) (*UserCard, error) {
	resp, err := oc.Client.LoginUser(ctx, email, phone)
	if err != nil {
		return nil, err
	}
	return oc.userToCard(resp.User), nil
}

func (oc *OperatorConnector) userToCard(user response.EndUser) *UserCard {
	card := &UserCard{
		UserID:      user.ID,
		Name:        user.Name,
		Email:       user.Email,
		EncryptedQR: user.EncryptedQR.Or(""),
	}
	qrURL, err := oc.Client.QRImageURLForUser(user, qrImagePixels)
	if err != nil {
		oc.Log.Debug().Err(err).Str("user_id", user.ID).Msg("No QR image for user")
	}
	card.QRImageURL = qrURL
	return card
}

// SendSOS raises an emergency alert for a registered end user. Media
// arguments are bucket keys or URLs and may be empty.
func (oc *OperatorConnector) SendSOS(ctx context.Context, email, latitude, longitude, message string) (string, error) {
	lat, err := parseCoordinate(latitude, 90)
	if err != nil {
		return "", fmt.Errorf("invalid latitude: %w", err)
	}
	lng, err := parseCoordinate(longitude, 180)
	if err != nil {
		return "", fmt.Errorf("invalid longitude: %w", err)
	}
	resp, err := oc.Client.SendEmergencyAlert(ctx, payload.EmergencyAlertPayload{
		UserEmail: strings.TrimSpace(email),
		Latitude:  lat,
		Longitude: lng,
		Message:   types.Some(strings.TrimSpace(message)),
	})
	if err != nil {
		return "", err
	}
	return resp.AlertID, nil
}

func parseCoordinate(value string, limit float64) (float64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if parsed < -limit || parsed > limit {
		return 0, fmt.Errorf("%v is outside ±%v", parsed, limit)
	}
	return parsed, nil
}
