package response

import (
	"encoding/json"

	"github.com/authqr/operator/pkg/authqrgo/types"
)

type MessageResponse struct {
	Message string `json:"message,omitempty"`
}

func (r MessageResponse) Decode(data []byte) (any, error) {
	respData := &MessageResponse{}
	return respData, json.Unmarshal(data, &respData)
}

type LoginResponse struct {
	AccessToken string `json:"access_token,omitempty"`
}

func (r LoginResponse) Decode(data []byte) (any, error) {
	respData := &LoginResponse{}
	return respData, json.Unmarshal(data, &respData)
}

type VerificationStatus string

const (
	VerificationStatusValid VerificationStatus = "VALID"
)

// VerifiedIdentity is the decoded QR payload. Fields beyond the known ones
// are kept in Extra.
type VerifiedIdentity struct {
	Name    string         `json:"name,omitempty"`
	Email   string         `json:"email,omitempty"`
	Phone   string         `json:"phone,omitempty"`
	VoterID string         `json:"voter_id,omitempty"`
	PanID   string         `json:"pan_id,omitempty"`
	Extra   map[string]any `json:"-"`
}

var knownIdentityFields = []string{"name", "email", "phone", "voter_id", "pan_id"}

type umVerifiedIdentity VerifiedIdentity

func (v *VerifiedIdentity) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, (*umVerifiedIdentity)(v)); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range knownIdentityFields {
		delete(all, key)
	}
	v.Extra = nil
	for key, value := range all {
		if value == nil {
			continue
		}
		if v.Extra == nil {
			v.Extra = make(map[string]any, len(all))
		}
		v.Extra[key] = value
	}
	return nil
}

func (v *VerifiedIdentity) IsEmpty() bool {
	return v == nil || (v.Name == "" && v.Email == "" && v.Phone == "" && v.VoterID == "" && v.PanID == "" && len(v.Extra) == 0)
}

type VerifyQRResponse struct {
	Status   VerificationStatus `json:"status,omitempty"`
	UserData VerifiedIdentity   `json:"user_data,omitempty"`
}

func (r VerifyQRResponse) Decode(data []byte) (any, error) {
	respData := &VerifyQRResponse{}
	return respData, json.Unmarshal(data, &respData)
}

type EmergencyAlert struct {
	ID         int64                           `json:"id"`
	DeviceID   types.Optional[string]          `json:"device_id,omitempty"`
	UserName   string                          `json:"user_name,omitempty"`
	UserPhone  types.Optional[string]          `json:"user_phone,omitempty"`
	UserEmail  types.Optional[string]          `json:"user_email,omitempty"`
	Latitude   float64                         `json:"latitude"`
	Longitude  float64                         `json:"longitude"`
	PhotoURL   types.Optional[string]          `json:"photo_url,omitempty"`
	AudioURL   types.Optional[string]          `json:"audio_url,omitempty"`
	Message    types.Optional[string]          `json:"message,omitempty"`
	CreatedAt  types.Timestamp                 `json:"created_at"`
	Resolved   bool                            `json:"resolved"`
	ResolvedAt types.Optional[types.Timestamp] `json:"resolved_at,omitempty"`
}

type EmergencyAlertsResponse struct {
	Alerts []EmergencyAlert `json:"alerts"`
}

func (r EmergencyAlertsResponse) Decode(data []byte) (any, error) {
	respData := &EmergencyAlertsResponse{}
	return respData, json.Unmarshal(data, &respData)
}
