package routing

import (
	"net/http"

	"github.com/authqr/operator/pkg/authqrgo/routing/response"
	"github.com/authqr/operator/pkg/authqrgo/types"
)

type PayloadDataInterface interface {
	Encode() ([]byte, error)
}

type ResponseDataInterface interface {
	Decode(data []byte) (any, error)
}

type RequestEndpointInfo struct {
	Method             string
	HeaderOpts         types.HeaderOpts
	ContentType        types.ContentType
	ResponseDefinition ResponseDataInterface
}

var jsonAccept = map[string]string{
	"accept": string(types.ContentTypeJSON),
}

var RequestStoreDefinition = map[RequestEndpointURL]RequestEndpointInfo{
	AdminRegisterURL: {
		Method:      http.MethodPost,
		ContentType: types.ContentTypeJSON,
		HeaderOpts: types.HeaderOpts{
			WithRequestID: true,
			Extra:         jsonAccept,
		},
		ResponseDefinition: response.MessageResponse{},
	},
	AdminLoginURL: {
		Method:      http.MethodPost,
		ContentType: types.ContentTypeJSON,
		HeaderOpts: types.HeaderOpts{
			WithRequestID: true,
			Extra:         jsonAccept,
		},
		ResponseDefinition: response.LoginResponse{},
	},
	AdminVerifyQRURL: {
		Method:      http.MethodPost,
		ContentType: types.ContentTypeJSON,
		HeaderOpts: types.HeaderOpts{
			WithBearer:    true,
			WithRequestID: true,
			Extra:         jsonAccept,
		},
		ResponseDefinition: response.VerifyQRResponse{},
	},
	AdminEmergencyAlertsURL: {
		Method:      http.MethodGet,
		ContentType: types.ContentTypeNone,
		HeaderOpts: types.HeaderOpts{
			WithBearer:    true,
			WithRequestID: true,
			Extra:         jsonAccept,
		},
		ResponseDefinition: response.EmergencyAlertsResponse{},
	},
	AdminResolveAlertURL: {
		Method:      http.MethodPost,
		ContentType: types.ContentTypeJSON,
		HeaderOpts: types.HeaderOpts{
			WithBearer:    true,
			WithRequestID: true,
			Extra:         jsonAccept,
		},
		ResponseDefinition: response.MessageResponse{},
	},
	UserRegisterURL: {
		Method:      http.MethodPost,
		ContentType: types.ContentTypeJSON,
		HeaderOpts: types.HeaderOpts{
			WithRequestID: true,
			Extra:         jsonAccept,
		},
		ResponseDefinition: response.UserRegisterResponse{},
	},
	UserLoginURL: {
		Method:      http.MethodPost,
		ContentType: types.ContentTypeJSON,
		HeaderOpts: types.HeaderOpts{
			WithRequestID: true,
			Extra:         jsonAccept,
		},
		ResponseDefinition: response.UserLoginResponse{},
	},
	UserEmergencyAlertURL: {
		Method:      http.MethodPost,
		ContentType: types.ContentTypeJSON,
		HeaderOpts: types.HeaderOpts{
			WithRequestID: true,
			Extra:         jsonAccept,
		},
		ResponseDefinition: response.EmergencyAlertCreatedResponse{},
	},
}
