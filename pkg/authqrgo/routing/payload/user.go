package payload

import (
	"encoding/json"

	"github.com/authqr/operator/pkg/authqrgo/types"
)

type RegisterUserPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	VoterID string `json:"voter_id"`
	PanID   string `json:"pan_id"`
}

func (p RegisterUserPayload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

type LoginUserPayload struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (p LoginUserPayload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

type EmergencyAlertPayload struct {
	UserEmail string                 `json:"user_email"`
	Latitude  float64                `json:"latitude"`
	Longitude float64                `json:"longitude"`
	AudioURL  types.Optional[string] `json:"audio_url"`
	PhotoURL  types.Optional[string] `json:"photo_url"`
	Message   types.Optional[string] `json:"message"`
}

func (p EmergencyAlertPayload) Encode() ([]byte, error) {
	return json.Marshal(p)
}
