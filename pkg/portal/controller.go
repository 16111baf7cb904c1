package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/authqr/operator/pkg/authqrgo"
	"github.com/authqr/operator/pkg/authqrgo/credentials"
	"github.com/authqr/operator/pkg/authqrgo/routing/response"
	"github.com/authqr/operator/pkg/authqrgo/types"
	"github.com/authqr/operator/pkg/portal/event"
)

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrAlertNotFound   = errors.New("alert not found")
	ErrAlreadyResolved = errors.New("alert is already resolved")
	// ErrSessionChanged is returned when the session was torn down or
	// replaced while a call was in flight. The result was discarded.
	ErrSessionChanged = errors.New("session changed during request")
)

const DefaultPollInterval = time.Second

// Backend is the subset of *authqrgo.Client the controller drives.
type Backend interface {
	Register(ctx context.Context, username, email, password string) (*response.MessageResponse, error)
	Login(ctx context.Context, username, password string) (*response.LoginResponse, error)
	VerifyQR(ctx context.Context, encryptedQR string) (*response.VerifyQRResponse, error)
	ListAlerts(ctx context.Context) ([]response.EmergencyAlert, error)
	ResolveAlert(ctx context.Context, alertID int64) (*response.MessageResponse, error)
}

type Telemetry interface {
	FetchLatestVitals(ctx context.Context) (*response.VitalSignsSample, error)
}

// EventHandler receives values from the event package. It may be called
// from several goroutines at once and must not block for long.
type EventHandler func(evt any)

type ControllerOpts struct {
	Backend   Backend
	Telemetry Telemetry
	// Credentials must be the same store the backend client reads its
	// bearer token from.
	Credentials  *credentials.Credentials
	Media        *authqrgo.MediaResolver
	PollInterval time.Duration
	EventHandler EventHandler
}

// Controller runs one operator session: login, the polling loop, the
// verification gate and teardown. All state sits behind lock; network calls
// are made without holding it and their results are applied only if the
// session epoch has not moved in the meantime.
type Controller struct {
	log          zerolog.Logger
	backend      Backend
	telemetry    Telemetry
	media        *authqrgo.MediaResolver
	pollInterval time.Duration
	eventHandler EventHandler

	lock       sync.Mutex
	session    *Session
	gate       *VerificationGate
	clock      *SessionClock
	active     bool
	epoch      uint64
	cancelLoop context.CancelFunc
	loopDone   chan struct{}
}

func NewController(opts *ControllerOpts, logger zerolog.Logger) *Controller {
	log := logger.With().Str("component", "alert_feed").Logger()
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	media := opts.Media
	if media == nil {
		media = authqrgo.NewMediaResolver("")
	}
	return &Controller{
		log:          log,
		backend:      opts.Backend,
		telemetry:    opts.Telemetry,
		media:        media,
		pollInterval: interval,
		eventHandler: opts.EventHandler,
		session:      NewSession(opts.Credentials, log),
		gate:         NewVerificationGate(),
		clock:        NewSessionClock(),
	}
}

func (c *Controller) SetEventHandler(handler EventHandler) {
	c.lock.Lock()
	c.eventHandler = handler
	c.lock.Unlock()
}

func (c *Controller) emit(evts ...any) {
	c.lock.Lock()
	handler := c.eventHandler
	c.lock.Unlock()
	if handler == nil {
		return
	}
	for _, evt := range evts {
		handler(evt)
	}
}

func (c *Controller) State() types.SessionState {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() types.SessionState {
	switch {
	case !c.active:
		return types.StateLoggedOut
	case c.gate.IsOpen():
		return types.StateVerified
	default:
		return types.StateUnverified
	}
}

// Register creates an operator account. It never changes session state.
func (c *Controller) Register(ctx context.Context, username, email, password string) (string, error) {
	resp, err := c.backend.Register(ctx, username, email, password)
	if err != nil {
		c.log.Debug().Err(err).Str("username", username).Msg("Registration rejected")
		return "", err
	}
	return resp.Message, nil
}

// Login authenticates and enters LoggedIn. On failure nothing changes: the
// stored credential, the loop and the clock stay as they were.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	resp, err := c.backend.Login(ctx, username, password)
	if err != nil {
		c.log.Debug().Err(err).Str("username", username).Msg("Login rejected")
		return err
	}

	c.lock.Lock()
	c.session.SetCredential(resp.AccessToken)
	loopCtx, epoch, sessionID := c.enterLocked()
	c.lock.Unlock()

	c.log.Info().Str("session_id", sessionID).Msg("Logged in")
	c.emit(&event.LoggedIn{SessionID: sessionID})
	c.firstFetch(loopCtx, epoch)
	return nil
}

// Resume enters LoggedIn with a credential persisted by an earlier run. It
// reports false when there is none. The identity is never persisted, so a
// resumed session always starts unverified.
func (c *Controller) Resume() bool {
	c.lock.Lock()
	if c.active {
		c.lock.Unlock()
		return true
	}
	if !c.session.IsAuthenticated() {
		c.lock.Unlock()
		return false
	}
	loopCtx, epoch, sessionID := c.enterLocked()
	c.lock.Unlock()

	c.log.Info().Str("session_id", sessionID).Msg("Resumed stored session")
	c.emit(&event.LoggedIn{SessionID: sessionID, Resumed: true})
	c.firstFetch(loopCtx, epoch)
	return true
}

// enterLocked starts a new epoch with a reset clock and a running loop. Any
// previous loop is stopped first.
func (c *Controller) enterLocked() (context.Context, uint64, string) {
	c.stopLoopLocked()
	c.epoch++
	c.active = true
	sessionID := c.session.begin()
	c.gate.Clear()
	c.clock.Reset()

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancelLoop = cancel
	c.loopDone = done
	go c.runLoop(loopCtx, c.epoch, done)
	return loopCtx, c.epoch, sessionID
}

// stopLoopLocked cancels the loop and waits for it to exit. The loop never
// takes the lock, so waiting here cannot deadlock. Ticks already in flight
// are left to finish and are discarded by the epoch check.
func (c *Controller) stopLoopLocked() {
	if c.cancelLoop == nil {
		return
	}
	c.cancelLoop()
	<-c.loopDone
	c.cancelLoop = nil
	c.loopDone = nil
}

func (c *Controller) runLoop(ctx context.Context, epoch uint64, done chan struct{}) {
	defer close(done)
	log := c.log.With().Uint64("epoch", epoch).Logger()
	log.Debug().Dur("interval", c.pollInterval).Msg("Feed loop started")
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Feed loop stopped")
			return
		case <-ticker.C:
			go c.tick(ctx, epoch)
		}
	}
}

// tick advances the clock and refreshes alerts and vitals concurrently.
// Overlapping ticks are allowed; whichever response lands last wins.
func (c *Controller) tick(ctx context.Context, epoch uint64) {
	c.lock.Lock()
	if epoch != c.epoch || !c.active {
		c.lock.Unlock()
		return
	}
	elapsed := c.clock.Tick()
	c.lock.Unlock()
	c.emit(&event.ClockTick{Elapsed: elapsed, Formatted: FormatElapsed(elapsed)})

	c.poll(ctx, epoch)
}

func (c *Controller) poll(ctx context.Context, epoch uint64) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = c.refreshAlerts(ctx, epoch)
	}()
	go func() {
		defer wg.Done()
		c.refreshVitals(ctx, epoch)
	}()
	wg.Wait()
}

// firstFetch loads the alert list before returning to the caller. Vitals come
// from a slower third-party feed and land whenever they arrive.
func (c *Controller) firstFetch(ctx context.Context, epoch uint64) {
	go c.refreshVitals(ctx, epoch)
	_ = c.refreshAlerts(ctx, epoch)
}

func (c *Controller) refreshAlerts(ctx context.Context, epoch uint64) error {
	alerts, err := c.backend.ListAlerts(ctx)
	if err != nil {
		if errors.Is(err, authqrgo.ErrAuthExpired) {
			c.expire(epoch)
		} else if ctx.Err() == nil {
			c.log.Warn().Err(err).Msg("Failed to fetch alerts")
		}
		return err
	}

	c.lock.Lock()
	if epoch != c.epoch || !c.active {
		c.lock.Unlock()
		c.log.Trace().Uint64("epoch", epoch).Msg("Dropping alerts from stale session")
		return ErrSessionChanged
	}
	c.session.alerts = alerts
	evt := &event.AlertsUpdated{Total: len(alerts), Unresolved: c.session.unresolvedCount()}
	c.lock.Unlock()

	c.emit(evt)
	return nil
}

// refreshVitals keeps the previous sample when the feed errors or is empty.
func (c *Controller) refreshVitals(ctx context.Context, epoch uint64) {
	if c.telemetry == nil {
		return
	}
	sample, err := c.telemetry.FetchLatestVitals(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.log.Warn().Err(err).Msg("Failed to fetch vitals")
		}
		return
	}
	if sample == nil {
		return
	}

	c.lock.Lock()
	if epoch != c.epoch || !c.active {
		c.lock.Unlock()
		return
	}
	c.session.vitals = sample
	c.lock.Unlock()

	c.emit(&event.VitalsUpdated{LastUpdated: sample.LastUpdated})
}

// expire tears the session down after the backend rejected the credential.
// Only the epoch that saw the rejection may do so.
func (c *Controller) expire(epoch uint64) {
	c.lock.Lock()
	if epoch != c.epoch || !c.active {
		c.lock.Unlock()
		return
	}
	sessionID := c.session.ID()
	c.teardownLocked()
	c.lock.Unlock()

	c.log.Warn().Str("session_id", sessionID).Msg("Session expired, logged out")
	c.emit(
		&event.SessionExpired{SessionID: sessionID, Message: UserMessage(authqrgo.ErrAuthExpired)},
		&event.LoggedOut{SessionID: sessionID, Reason: types.LogoutSessionExpired},
	)
}

// teardownLocked leaves LoggedIn. The clock keeps its last value until the
// next login resets it.
func (c *Controller) teardownLocked() {
	c.stopLoopLocked()
	c.epoch++
	c.active = false
	c.session.ClearCredential()
	c.gate.Clear()
}

// VerifyQR checks a scanned payload with the backend. The gate is closed for
// the duration of the attempt, so a rejected scan leaves the operator
// unverified even if an earlier scan succeeded.
func (c *Controller) VerifyQR(ctx context.Context, encryptedQR string) (response.VerifiedIdentity, error) {
	encryptedQR = strings.TrimSpace(encryptedQR)
	if encryptedQR == "" {
		return response.VerifiedIdentity{}, fmt.Errorf("%w: QR payload is empty", authqrgo.ErrVerification)
	}

	c.lock.Lock()
	if !c.active {
		c.lock.Unlock()
		return response.VerifiedIdentity{}, ErrNotLoggedIn
	}
	epoch := c.epoch
	c.gate.Close()
	c.lock.Unlock()

	resp, err := c.backend.VerifyQR(ctx, encryptedQR)
	if err != nil {
		if errors.Is(err, authqrgo.ErrAuthExpired) {
			c.expire(epoch)
		}
		c.log.Debug().Err(err).Msg("Verification rejected")
		return response.VerifiedIdentity{}, err
	}

	c.lock.Lock()
	if epoch != c.epoch || !c.active {
		c.lock.Unlock()
		return response.VerifiedIdentity{}, ErrSessionChanged
	}
	count := c.gate.Record(resp.UserData)
	c.lock.Unlock()

	c.log.Info().Int("verify_count", count).Msg("Identity verified")
	c.emit(&event.IdentityVerified{Identity: resp.UserData, Count: count})
	return resp.UserData, nil
}

// ResolveAlert marks a cached, unresolved alert as handled and refreshes the
// cache before returning. A failed refresh is logged, not returned; the
// next tick will catch up.
func (c *Controller) ResolveAlert(ctx context.Context, alertID int64) error {
	c.lock.Lock()
	if !c.active {
		c.lock.Unlock()
		return ErrNotLoggedIn
	}
	alert, ok := c.session.findAlert(alertID)
	epoch := c.epoch
	c.lock.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrAlertNotFound, alertID)
	} else if alert.Resolved {
		return fmt.Errorf("%w: %d", ErrAlreadyResolved, alertID)
	}

	_, err := c.backend.ResolveAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, authqrgo.ErrAuthExpired) {
			c.expire(epoch)
		}
		c.log.Warn().Err(err).Int64("alert_id", alertID).Msg("Failed to resolve alert")
		return err
	}
	c.log.Info().Int64("alert_id", alertID).Msg("Alert resolved")
	c.emit(&event.AlertResolved{AlertID: alertID})

	if err = c.refreshAlerts(ctx, epoch); err != nil {
		c.log.Debug().Err(err).Msg("Refresh after resolve failed")
	}
	return nil
}

// Logout is synchronous and valid from any state. A stored credential is
// removed even when no session loop is running.
func (c *Controller) Logout() {
	c.lock.Lock()
	wasActive := c.active
	sessionID := c.session.ID()
	if wasActive {
		c.teardownLocked()
	} else {
		c.session.ClearCredential()
		c.gate.Clear()
	}
	c.lock.Unlock()

	if wasActive {
		c.log.Info().Str("session_id", sessionID).Msg("Logged out")
		c.emit(&event.LoggedOut{SessionID: sessionID, Reason: types.LogoutRequested})
	}
}

// Shutdown stops the loop but keeps the stored credential, so the next run
// can Resume.
func (c *Controller) Shutdown() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.stopLoopLocked()
	if c.active {
		c.epoch++
		c.active = false
	}
}
