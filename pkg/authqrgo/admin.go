package authqrgo

import (
	"context"
	"net/http"

	"github.com/authqr/operator/pkg/authqrgo/routing"
	"github.com/authqr/operator/pkg/authqrgo/routing/payload"
	"github.com/authqr/operator/pkg/authqrgo/routing/response"
)

// Register creates an operator account. Any rejection is a validation error
// carrying the backend's detail.
func (c *Client) Register(ctx context.Context, username, email, password string) (*response.MessageResponse, error) {
	registerPayload := payload.RegisterOperatorPayload{
		Username: username,
		Email:    email,
		Password: password,
	}

	_, respData, err := c.MakeRoutingRequest(ctx, routing.AdminRegisterURL, registerPayload, nil, StatusKinds{Default: ErrValidation})
	if err != nil {
		return nil, err
	}

	registerResp, ok := respData.(*response.MessageResponse)
	if !ok {
		return nil, newErrorResponseTypeAssertFailed("*response.MessageResponse")
	}
	return registerResp, nil
}

// Login exchanges operator credentials for a bearer token. It does not store
// the token; that is up to the caller.
func (c *Client) Login(ctx context.Context, username, password string) (*response.LoginResponse, error) {
	loginPayload := payload.LoginOperatorPayload{
		Username: username,
		Password: password,
	}

	kinds := StatusKinds{ByStatus: map[int]error{http.StatusUnauthorized: ErrAuth}}
	_, respData, err := c.MakeRoutingRequest(ctx, routing.AdminLoginURL, loginPayload, nil, kinds)
	if err != nil {
		return nil, err
	}

	loginResp, ok := respData.(*response.LoginResponse)
	if !ok {
		return nil, newErrorResponseTypeAssertFailed("*response.LoginResponse")
	}
	if loginResp.AccessToken == "" {
		return nil, newTransportError("login", errEmptyToken)
	}
	return loginResp, nil
}

func (c *Client) VerifyQR(ctx context.Context, encryptedQR string) (*response.VerifyQRResponse, error) {
	verifyPayload := payload.VerifyQRPayload{
		EncryptedQR: encryptedQR,
	}

	kinds := StatusKinds{
		ByStatus: gatedStatusKinds.ByStatus,
		Default:  ErrVerification,
	}
	_, respData, err := c.MakeRoutingRequest(ctx, routing.AdminVerifyQRURL, verifyPayload, nil, kinds)
	if err != nil {
		return nil, err
	}

	verifyResp, ok := respData.(*response.VerifyQRResponse)
	if !ok {
		return nil, newErrorResponseTypeAssertFailed("*response.VerifyQRResponse")
	}
	if verifyResp.UserData.IsEmpty() {
		return nil, &ResponseError{Kind: ErrVerification, StatusCode: http.StatusOK, Detail: "backend returned no identity"}
	}
	return verifyResp, nil
}

// ListAlerts returns the alerts in the order the backend sent them.
func (c *Client) ListAlerts(ctx context.Context) ([]response.EmergencyAlert, error) {
	_, respData, err := c.MakeRoutingRequest(ctx, routing.AdminEmergencyAlertsURL, nil, nil, gatedStatusKinds)
	if err != nil {
		return nil, err
	}

	alertsResp, ok := respData.(*response.EmergencyAlertsResponse)
	if !ok {
		return nil, newErrorResponseTypeAssertFailed("*response.EmergencyAlertsResponse")
	}
	if alertsResp.Alerts == nil {
		return []response.EmergencyAlert{}, nil
	}
	return alertsResp.Alerts, nil
}

func (c *Client) ResolveAlert(ctx context.Context, alertID int64) (*response.MessageResponse, error) {
	_, respData, err := c.MakeRoutingRequest(ctx, routing.AdminResolveAlertURL, payload.EmptyPayload{}, nil, gatedStatusKinds, alertID)
	if err != nil {
		return nil, err
	}

	resolveResp, ok := respData.(*response.MessageResponse)
	if !ok {
		return nil, newErrorResponseTypeAssertFailed("*response.MessageResponse")
	}
	return resolveResp, nil
}
