package response

import (
	"encoding/json"

	"github.com/authqr/operator/pkg/authqrgo/types"
)

type UserRegisterResponse struct {
	Message     string                 `json:"message,omitempty"`
	UserID      string                 `json:"user_id,omitempty"`
	EncryptedQR string                 `json:"encrypted_qr,omitempty"`
	QRPath      types.Optional[string] `json:"qr_path,omitempty"`
}

func (r UserRegisterResponse) Decode(data []byte) (any, error) {
	respData := &UserRegisterResponse{}
	return respData, json.Unmarshal(data, &respData)
}

type EndUser struct {
	ID          string                 `json:"id,omitempty"`
	Name        string                 `json:"name,omitempty"`
	Email       string                 `json:"email,omitempty"`
	Phone       string                 `json:"phone,omitempty"`
	VoterID     string                 `json:"voter_id,omitempty"`
	PanID       string                 `json:"pan_id,omitempty"`
	QRPath      types.Optional[string] `json:"qr_path,omitempty"`
	EncryptedQR types.Optional[string] `json:"encrypted_qr,omitempty"`
}

type UserLoginResponse struct {
	Message string  `json:"message,omitempty"`
	User    EndUser `json:"user"`
}

func (r UserLoginResponse) Decode(data []byte) (any, error) {
	respData := &UserLoginResponse{}
	return respData, json.Unmarshal(data, &respData)
}

type EmergencyAlertCreatedResponse struct {
	Message string `json:"message,omitempty"`
	AlertID string `json:"alert_id,omitempty"`
}

func (r EmergencyAlertCreatedResponse) Decode(data []byte) (any, error) {
	respData := &EmergencyAlertCreatedResponse{}
	return respData, json.Unmarshal(data, &respData)
}
