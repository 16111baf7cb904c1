package payload

import "encoding/json"

type RegisterOperatorPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p RegisterOperatorPayload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

type LoginOperatorPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (p LoginOperatorPayload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

type VerifyQRPayload struct {
	EncryptedQR string `json:"encrypted_qr"`
}

func (p VerifyQRPayload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// EmptyPayload encodes to {}; the resolve endpoint expects a JSON body even
// though it reads nothing from it.
type EmptyPayload struct{}

func (p EmptyPayload) Encode() ([]byte, error) {
	return []byte("{}"), nil
}
