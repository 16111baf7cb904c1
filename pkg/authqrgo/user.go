package authqrgo

import (
	"context"
	"net/http"

	"github.com/authqr/operator/pkg/authqrgo/routing"
	"github.com/authqr/operator/pkg/authqrgo/routing/payload"
	"github.com/authqr/operator/pkg/authqrgo/routing/response"
)

// RegisterUser enrolls an end user. The backend encrypts the identity and
// returns the ciphertext that goes into the user's QR code.
func (c *Client) RegisterUser(ctx context.Context, p payload.RegisterUserPayload) (*response.UserRegisterResponse, error) {
	_, respData, err := c.MakeRoutingRequest(ctx, routing.UserRegisterURL, p, nil, StatusKinds{Default: ErrValidation})
	if err != nil {
		return nil, err
	}

	registerResp, ok := respData.(*response.UserRegisterResponse)
	if !ok {
		return nil, newErrorResponseTypeAssertFailed("*response.UserRegisterResponse")
	}
	return registerResp, nil
}

func (c *Client) LoginUser(ctx context.Context, email, phone string) (*response.UserLoginResponse, error) {
	loginPayload := payload.LoginUserPayload{
		Email: email,
		Phone: phone,
	}

	kinds := StatusKinds{ByStatus: map[int]error{http.StatusUnauthorized: ErrAuth}}
	_, respData, err := c.MakeRoutingRequest(ctx, routing.UserLoginURL, loginPayload, nil, kinds)
	if err != nil {
		return nil, err
	}

	loginResp, ok := respData.(*response.UserLoginResponse)
	if !ok {
		return nil, newErrorResponseTypeAssertFailed("*response.UserLoginResponse")
	}
	return loginResp, nil
}

// SendEmergencyAlert raises an SOS for a registered end user. It shows up in
// the operator feed on the next poll.
func (c *Client) SendEmergencyAlert(ctx context.Context, p payload.EmergencyAlertPayload) (*response.EmergencyAlertCreatedResponse, error) {
	kinds := StatusKinds{
		ByStatus: map[int]error{
			http.StatusNotFound:            ErrValidation,
			http.StatusUnprocessableEntity: ErrValidation,
		},
	}
	_, respData, err := c.MakeRoutingRequest(ctx, routing.UserEmergencyAlertURL, p, nil, kinds)
	if err != nil {
		return nil, err
	}

	alertResp, ok := respData.(*response.EmergencyAlertCreatedResponse)
	if !ok {
		return nil, newErrorResponseTypeAssertFailed("*response.EmergencyAlertCreatedResponse")
	}
	return alertResp, nil
}
