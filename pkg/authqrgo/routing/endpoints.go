package routing

type RequestEndpointURL string

// Paths are relative to the configured API base URL. Resolve takes the alert
// id as its single format argument.
const (
	AdminRegisterURL        RequestEndpointURL = "/admin/register"
	AdminLoginURL           RequestEndpointURL = "/admin/login"
	AdminVerifyQRURL        RequestEndpointURL = "/admin/verify-qr"
	AdminEmergencyAlertsURL RequestEndpointURL = "/admin/emergency-alerts"
	AdminResolveAlertURL    RequestEndpointURL = "/admin/emergency-alerts/%d/resolve"
	UserRegisterURL         RequestEndpointURL = "/user/register"
	UserLoginURL            RequestEndpointURL = "/user/login"
	UserEmergencyAlertURL   RequestEndpointURL = "/user/emergency-alert"
	QRImageURL              RequestEndpointURL = "/qr/%s"
)

const (
	DefaultAPIBaseURL       = "http://127.0.0.1:8000"
	DefaultTelemetryBaseURL = "https://api.thingspeak.com"
	TelemetryFeedURL        = "/channels/%s/feeds.json"
	QRRendererURL           = "https://api.qrserver.com/v1/create-qr-code/"
	MapsURL                 = "https://www.google.com/maps"
)
