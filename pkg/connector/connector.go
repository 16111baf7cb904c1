package connector

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/authqr/operator/pkg/authqrgo"
	"github.com/authqr/operator/pkg/authqrgo/credentials"
	"github.com/authqr/operator/pkg/portal"
)

// OperatorConnector wires the backend and telemetry clients to one
// controller according to the config.
type OperatorConnector struct {
	Config *portal.Config
	Log    zerolog.Logger

	Credentials *credentials.Credentials
	Client      *authqrgo.Client
	Telemetry   *authqrgo.TelemetryClient
	Media       *authqrgo.MediaResolver
	Controller  *portal.Controller
}

func NewConnector(cfg *portal.Config, log zerolog.Logger) (*OperatorConnector, error) {
	creds, err := credentials.NewPersistedCredentials(credentials.NewFileStore(cfg.Session.StatePath))
	if err != nil {
		return nil, err
	}

	client := authqrgo.NewClient(&authqrgo.ClientOpts{
		BaseURL:     cfg.API.BaseURL,
		Credentials: creds,
		Timeout:     cfg.API.Timeout,
	}, log.With().Str("component", "backend").Logger())

	telemetry := authqrgo.NewTelemetryClient(&authqrgo.TelemetryOpts{
		BaseURL:   cfg.Telemetry.BaseURL,
		ChannelID: cfg.Telemetry.ChannelID,
		ReadKey:   cfg.Telemetry.ReadKey,
		Timeout:   cfg.API.Timeout,
	}, log.With().Str("component", "telemetry").Logger())

	if cfg.API.Proxy != "" {
		if err = client.SetProxy(cfg.API.Proxy); err != nil {
			return nil, fmt.Errorf("failed to set backend proxy: %w", err)
		}
		if err = telemetry.SetProxy(cfg.API.Proxy); err != nil {
			return nil, fmt.Errorf("failed to set telemetry proxy: %w", err)
		}
	}

	oc := &OperatorConnector{
		Config:      cfg,
		Log:         log,
		Credentials: creds,
		Client:      client,
		Media:       authqrgo.NewMediaResolver(cfg.Storage.MediaBaseURL),
	}

	controllerOpts := &portal.ControllerOpts{
		Backend:      client,
		Credentials:  creds,
		Media:        oc.Media,
		PollInterval: cfg.Session.PollInterval,
	}
	// A nil *TelemetryClient in the interface would defeat the nil check in
	// the controller.
	if cfg.Telemetry.ChannelID != "" {
		oc.Telemetry = telemetry
		controllerOpts.Telemetry = telemetry
	} else {
		log.Warn().Msg("No telemetry channel configured, vitals will not be shown")
	}
	oc.Controller = portal.NewController(controllerOpts, log)
	return oc, nil
}
