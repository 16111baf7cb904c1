package portal

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authqr/operator/pkg/authqrgo"
	"github.com/authqr/operator/pkg/authqrgo/credentials"
	"github.com/authqr/operator/pkg/authqrgo/routing/response"
	"github.com/authqr/operator/pkg/authqrgo/types"
	"github.com/authqr/operator/pkg/portal/event"
)

const (
	fastInterval = 10 * time.Millisecond
	// slowInterval keeps the loop from ticking during a test, so anything
	// observed must come from an out-of-cycle fetch.
	slowInterval = time.Hour
)

var errUnauthorized = &authqrgo.ResponseError{Kind: authqrgo.ErrAuthExpired, StatusCode: http.StatusUnauthorized, Detail: "Invalid token"}

type fakeBackend struct {
	lock sync.Mutex

	password  string
	token     string
	identity  response.VerifiedIdentity
	verifyErr error

	alerts    []response.EmergencyAlert
	listErr   error
	listCalls int

	resolveErr   error
	resolveCalls []int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		password: "goodpass",
		token:    "tok-1",
		identity: response.VerifiedIdentity{Name: "Asha", Email: "asha@example.com", Phone: "+91 98450 00000", VoterID: "V123", PanID: "P456"},
	}
}

func (fb *fakeBackend) Register(ctx context.Context, username, email, password string) (*response.MessageResponse, error) {
	if username == "taken" {
		return nil, &authqrgo.ResponseError{Kind: authqrgo.ErrValidation, StatusCode: http.StatusBadRequest, Detail: "Username already exists"}
	}
	return &response.MessageResponse{Message: "Admin registered successfully"}, nil
}

func (fb *fakeBackend) Login(ctx context.Context, username, password string) (*response.LoginResponse, error) {
	fb.lock.Lock()
	defer fb.lock.Unlock()
	if password != fb.password {
		return nil, &authqrgo.ResponseError{Kind: authqrgo.ErrAuth, StatusCode: http.StatusUnauthorized, Detail: "Invalid credentials"}
	}
	return &response.LoginResponse{AccessToken: fb.token}, nil
}

func (fb *fakeBackend) VerifyQR(ctx context.Context, encryptedQR string) (*response.VerifyQRResponse, error) {
	fb.lock.Lock()
	defer fb.lock.Unlock()
	if fb.verifyErr != nil {
		return nil, fb.verifyErr
	}
	return &response.VerifyQRResponse{Status: response.VerificationStatusValid, UserData: fb.identity}, nil
}

func (fb *fakeBackend) ListAlerts(ctx context.Context) ([]response.EmergencyAlert, error) {
	fb.lock.Lock()
	defer fb.lock.Unlock()
	fb.listCalls++
	if fb.listErr != nil {
		return nil, fb.listErr
	}
	alerts := make([]response.EmergencyAlert, len(fb.alerts))
	copy(alerts, fb.alerts)
	return alerts, nil
}

func (fb *fakeBackend) ResolveAlert(ctx context.Context, alertID int64) (*response.MessageResponse, error) {
	fb.lock.Lock()
	defer fb.lock.Unlock()
	fb.resolveCalls = append(fb.resolveCalls, alertID)
	if fb.resolveErr != nil {
		return nil, fb.resolveErr
	}
	for i := range fb.alerts {
		if fb.alerts[i].ID == alertID {
			fb.alerts[i].Resolved = true
		}
	}
	return &response.MessageResponse{Message: "Alert resolved"}, nil
}

func (fb *fakeBackend) set(fn func(fb *fakeBackend)) {
	fb.lock.Lock()
	defer fb.lock.Unlock()
	fn(fb)
}

func (fb *fakeBackend) calls() int {
	fb.lock.Lock()
	defer fb.lock.Unlock()
	return fb.listCalls
}

type fakeTelemetry struct {
	lock    sync.Mutex
	samples []*response.VitalSignsSample
	errs    []error
	calls   int
	// block, when set, holds every fetch until it is closed.
	block chan struct{}
}

// FetchLatestVitals replays the configured results, repeating the last one.
func (ft *fakeTelemetry) FetchLatestVitals(ctx context.Context) (*response.VitalSignsSample, error) {
	if ft.block != nil {
		select {
		case <-ft.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	ft.lock.Lock()
	defer ft.lock.Unlock()
	i := ft.calls
	if i >= len(ft.samples) {
		i = len(ft.samples) - 1
	}
	ft.calls++
	if i < 0 {
		return nil, nil
	}
	return ft.samples[i], ft.errs[i]
}

func (ft *fakeTelemetry) callCount() int {
	ft.lock.Lock()
	defer ft.lock.Unlock()
	return ft.calls
}

type eventRecorder struct {
	lock   sync.Mutex
	events []any
}

func (er *eventRecorder) handle(evt any) {
	er.lock.Lock()
	er.events = append(er.events, evt)
	er.lock.Unlock()
}

func (er *eventRecorder) snapshot() []any {
	er.lock.Lock()
	defer er.lock.Unlock()
	return append([]any(nil), er.events...)
}

func (er *eventRecorder) clockTicks() []int64 {
	var ticks []int64
	for _, evt := range er.snapshot() {
		if tick, ok := evt.(*event.ClockTick); ok {
			ticks = append(ticks, tick.Elapsed)
		}
	}
	return ticks
}

type testHarness struct {
	ctrl      *Controller
	backend   *fakeBackend
	telemetry *fakeTelemetry
	creds     *credentials.Credentials
	events    *eventRecorder
}

func newHarness(t *testing.T, interval time.Duration) *testHarness {
	t.Helper()
	h := &testHarness{
		backend:   newFakeBackend(),
		telemetry: &fakeTelemetry{},
		creds:     credentials.NewCredentials(),
		events:    &eventRecorder{},
	}
	h.ctrl = NewController(&ControllerOpts{
		Backend:      h.backend,
		Telemetry:    h.telemetry,
		Credentials:  h.creds,
		Media:        authqrgo.NewMediaResolver("https://objects.example.com/media"),
		PollInterval: interval,
		EventHandler: h.events.handle,
	}, zerolog.Nop())
	t.Cleanup(h.ctrl.Logout)
	return h
}

func sampleAlert(id int64, resolved bool) response.EmergencyAlert {
	created, _ := types.ParseTimestamp("2024-03-01T10:00:00")
	return response.EmergencyAlert{
		ID:        id,
		UserName:  "Asha",
		UserPhone: types.Some("+91 90000 00007"),
		Latitude:  12.9716,
		Longitude: 77.5946,
		CreatedAt: created,
		Resolved:  resolved,
		Message:   types.Some("chest pain"),
		PhotoURL:  types.Some("photos/7.jpg"),
		AudioURL:  types.None[string](),
	}
}

func TestLoginFailureChangesNothing(t *testing.T) {
	h := newHarness(t, fastInterval)

	err := h.ctrl.Login(context.Background(), "admin", "badpass")
	require.ErrorIs(t, err, authqrgo.ErrAuth)
	assert.Equal(t, "Invalid credentials", UserMessage(err))

	assert.True(t, h.creds.IsEmpty(credentials.AdminToken))
	assert.Equal(t, types.StateLoggedOut, h.ctrl.State())

	time.Sleep(5 * fastInterval)
	assert.Zero(t, h.backend.calls(), "no loop may run after a failed login")
	assert.Empty(t, h.events.snapshot())
}

func TestLoginFailureKeepsExistingCredential(t *testing.T) {
	h := newHarness(t, slowInterval)
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))

	err := h.ctrl.Login(context.Background(), "admin", "badpass")
	require.ErrorIs(t, err, authqrgo.ErrAuth)
	assert.Equal(t, "tok-1", h.creds.Get(credentials.AdminToken))
	assert.Equal(t, types.StateUnverified, h.ctrl.State())
}

func TestScenarioLoginEmptyFeed(t *testing.T) {
	h := newHarness(t, fastInterval)

	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	assert.Equal(t, "tok-1", h.creds.Get(credentials.AdminToken))
	assert.Equal(t, types.StateUnverified, h.ctrl.State())

	assert.Eventually(t, func() bool { return h.backend.calls() >= 2 }, time.Second, fastInterval)
	snap := h.ctrl.Snapshot()
	assert.Zero(t, snap.UnresolvedCount)
	assert.Empty(t, snap.Alerts)
	assert.NotEmpty(t, snap.SessionID)

	var loggedIn *event.LoggedIn
	for _, evt := range h.events.snapshot() {
		if e, ok := evt.(*event.LoggedIn); ok {
			loggedIn = e
		}
	}
	require.NotNil(t, loggedIn)
	assert.False(t, loggedIn.Resumed)
	assert.Equal(t, snap.SessionID, loggedIn.SessionID)
}

func TestDetailHiddenUntilVerified(t *testing.T) {
	h := newHarness(t, slowInterval)
	h.backend.set(func(fb *fakeBackend) {
		fb.alerts = []response.EmergencyAlert{sampleAlert(7, false), sampleAlert(8, true)}
	})
	h.telemetry.samples = []*response.VitalSignsSample{{BloodPressure: types.Some("120/80"), Oxygen: types.Some("98")}}
	h.telemetry.errs = []error{nil}

	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	assert.Eventually(t, func() bool { return h.telemetry.callCount() >= 1 }, time.Second, time.Millisecond)

	snap := h.ctrl.Snapshot()
	assert.Equal(t, types.StateUnverified, snap.State)
	assert.Equal(t, 1, snap.UnresolvedCount, "the count is never gated")
	assert.Empty(t, snap.Alerts, "no alert or reporter name before verification")
	assert.Nil(t, snap.Vitals)
	assert.Nil(t, snap.Identity)

	identity, err := h.ctrl.VerifyQR(context.Background(), "  gAAAAopaque  ")
	require.NoError(t, err)
	assert.Equal(t, "Asha", identity.Name)

	assert.Eventually(t, func() bool {
		vitals := h.ctrl.Snapshot().Vitals
		return vitals != nil && vitals.BloodPressure == "120/80"
	}, time.Second, time.Millisecond)
	snap = h.ctrl.Snapshot()
	assert.Equal(t, types.StateVerified, snap.State)
	assert.Equal(t, 1, snap.VerifyCount)
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "Asha", snap.Identity.Name)
	require.NotNil(t, snap.Vitals)
	assert.Equal(t, "N/A", snap.Vitals.HeartRate)
	require.Len(t, snap.Alerts, 2)
	assert.Equal(t, "Asha", snap.Alerts[0].UserName)

	detail := snap.Alerts[0].Detail
	require.NotNil(t, detail)
	assert.Equal(t, "12.9716, 77.5946", detail.Coordinates)
	assert.Equal(t, "https://www.google.com/maps?q=12.9716,77.5946", detail.MapsURL)
	assert.Equal(t, "+91 98450 00000", detail.ContactPhone, "verified phone wins over the alert's")
	assert.Equal(t, "chest pain", detail.Message)
	assert.Equal(t, "https://objects.example.com/media/photos/7.jpg", detail.PhotoURL)
	assert.Empty(t, detail.AudioURL)
	assert.Equal(t, "98", detail.Vitals.Oxygen)
}

func TestVerifyDoesNotRefetch(t *testing.T) {
	h := newHarness(t, slowInterval)
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	before := h.backend.calls()

	_, err := h.ctrl.VerifyQR(context.Background(), "gAAAAopaque")
	require.NoError(t, err)
	assert.Equal(t, before, h.backend.calls())
}

func TestVerifyRejected(t *testing.T) {
	h := newHarness(t, slowInterval)
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	_, err := h.ctrl.VerifyQR(context.Background(), "good")
	require.NoError(t, err)

	h.backend.set(func(fb *fakeBackend) {
		fb.verifyErr = &authqrgo.ResponseError{Kind: authqrgo.ErrVerification, StatusCode: http.StatusBadRequest, Detail: "Invalid QR code"}
	})
	_, err = h.ctrl.VerifyQR(context.Background(), "tampered")
	require.ErrorIs(t, err, authqrgo.ErrVerification)
	assert.Equal(t, "Verification failed: Invalid QR code", UserMessage(err))

	snap := h.ctrl.Snapshot()
	assert.Equal(t, types.StateUnverified, snap.State, "a rejected scan closes the gate")
	assert.Equal(t, 1, snap.VerifyCount)
	assert.Equal(t, "tok-1", h.creds.Get(credentials.AdminToken))

	_, err = h.ctrl.VerifyQR(context.Background(), "   ")
	assert.ErrorIs(t, err, authqrgo.ErrVerification)
}

func TestVerifyRequiresLogin(t *testing.T) {
	h := newHarness(t, slowInterval)
	_, err := h.ctrl.VerifyQR(context.Background(), "gAAAA")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestVerifyUnauthorizedExpires(t *testing.T) {
	h := newHarness(t, slowInterval)
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	h.backend.set(func(fb *fakeBackend) { fb.verifyErr = errUnauthorized })

	_, err := h.ctrl.VerifyQR(context.Background(), "gAAAA")
	require.ErrorIs(t, err, authqrgo.ErrAuthExpired)
	assert.Equal(t, types.StateLoggedOut, h.ctrl.State())
	assert.True(t, h.creds.IsEmpty(credentials.AdminToken))
}

func TestScenarioUnauthorizedTickLogsOut(t *testing.T) {
	h := newHarness(t, fastInterval)
	h.backend.set(func(fb *fakeBackend) { fb.alerts = []response.EmergencyAlert{sampleAlert(7, false)} })
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	_, err := h.ctrl.VerifyQR(context.Background(), "gAAAA")
	require.NoError(t, err)
	require.NotEmpty(t, h.ctrl.Snapshot().Alerts)

	h.backend.set(func(fb *fakeBackend) { fb.listErr = errUnauthorized })
	assert.Eventually(t, func() bool { return h.ctrl.State() == types.StateLoggedOut }, time.Second, fastInterval/2)

	snap := h.ctrl.Snapshot()
	assert.True(t, h.creds.IsEmpty(credentials.AdminToken))
	assert.Nil(t, snap.Identity)
	assert.Empty(t, snap.Alerts)
	assert.Zero(t, snap.UnresolvedCount)
	assert.Zero(t, snap.VerifyCount)

	// ticks that passed their epoch check just before the teardown may
	// still land; after that the network must stay quiet
	time.Sleep(3 * fastInterval)
	settled := h.backend.calls()
	time.Sleep(5 * fastInterval)
	assert.Equal(t, settled, h.backend.calls())

	var expired *event.SessionExpired
	var loggedOut *event.LoggedOut
	for _, evt := range h.events.snapshot() {
		switch e := evt.(type) {
		case *event.SessionExpired:
			expired = e
		case *event.LoggedOut:
			loggedOut = e
		}
	}
	require.NotNil(t, expired)
	assert.Equal(t, "Session expired. Please login again.", expired.Message)
	require.NotNil(t, loggedOut)
	assert.Equal(t, types.LogoutSessionExpired, loggedOut.Reason)
}

func TestTransientFailuresKeepPolling(t *testing.T) {
	h := newHarness(t, fastInterval)
	h.backend.set(func(fb *fakeBackend) { fb.listErr = authqrgo.ErrTransport })
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))

	assert.Eventually(t, func() bool { return h.backend.calls() >= 4 }, time.Second, fastInterval)
	assert.Equal(t, types.StateUnverified, h.ctrl.State())
	assert.Equal(t, "tok-1", h.creds.Get(credentials.AdminToken))
}

func TestScenarioResolveRefetchesImmediately(t *testing.T) {
	h := newHarness(t, slowInterval)
	h.backend.set(func(fb *fakeBackend) {
		fb.alerts = []response.EmergencyAlert{sampleAlert(7, false), sampleAlert(9, false)}
	})
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	assert.Equal(t, 2, h.ctrl.Snapshot().UnresolvedCount)
	_, err := h.ctrl.VerifyQR(context.Background(), "gAAAA")
	require.NoError(t, err)
	before := h.backend.calls()

	require.NoError(t, h.ctrl.ResolveAlert(context.Background(), 7))
	assert.Equal(t, before+1, h.backend.calls())

	snap := h.ctrl.Snapshot()
	require.Len(t, snap.Alerts, 2)
	assert.EqualValues(t, 7, snap.Alerts[0].ID)
	assert.True(t, snap.Alerts[0].Resolved)
	assert.False(t, snap.Alerts[1].Resolved)
	assert.Equal(t, 1, snap.UnresolvedCount)
}

func TestResolveAlreadyResolved(t *testing.T) {
	h := newHarness(t, slowInterval)
	h.backend.set(func(fb *fakeBackend) { fb.alerts = []response.EmergencyAlert{sampleAlert(7, true)} })
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	_, err := h.ctrl.VerifyQR(context.Background(), "gAAAA")
	require.NoError(t, err)
	before := h.ctrl.Snapshot()
	require.Len(t, before.Alerts, 1)

	err = h.ctrl.ResolveAlert(context.Background(), 7)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	err = h.ctrl.ResolveAlert(context.Background(), 404)
	assert.ErrorIs(t, err, ErrAlertNotFound)

	assert.Equal(t, before.Alerts, h.ctrl.Snapshot().Alerts)
	h.backend.set(func(fb *fakeBackend) { assert.Empty(t, fb.resolveCalls) })
}

func TestResolveFailureKeepsSession(t *testing.T) {
	h := newHarness(t, slowInterval)
	h.backend.set(func(fb *fakeBackend) {
		fb.alerts = []response.EmergencyAlert{sampleAlert(7, false)}
		fb.resolveErr = authqrgo.ErrTransport
	})
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	_, err := h.ctrl.VerifyQR(context.Background(), "gAAAA")
	require.NoError(t, err)

	err = h.ctrl.ResolveAlert(context.Background(), 7)
	require.ErrorIs(t, err, authqrgo.ErrTransport)
	assert.Equal(t, types.StateVerified, h.ctrl.State())
	snap := h.ctrl.Snapshot()
	require.Len(t, snap.Alerts, 1)
	assert.False(t, snap.Alerts[0].Resolved)
	assert.Equal(t, 1, snap.UnresolvedCount)
}

func TestResolveUnauthorizedExpires(t *testing.T) {
	h := newHarness(t, slowInterval)
	h.backend.set(func(fb *fakeBackend) {
		fb.alerts = []response.EmergencyAlert{sampleAlert(7, false)}
		fb.resolveErr = errUnauthorized
	})
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))

	err := h.ctrl.ResolveAlert(context.Background(), 7)
	require.ErrorIs(t, err, authqrgo.ErrAuthExpired)
	assert.Equal(t, types.StateLoggedOut, h.ctrl.State())
}

func TestResolveRequiresLogin(t *testing.T) {
	h := newHarness(t, slowInterval)
	assert.ErrorIs(t, h.ctrl.ResolveAlert(context.Background(), 7), ErrNotLoggedIn)
}

func TestClockCountsTicks(t *testing.T) {
	h := newHarness(t, fastInterval)
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	assert.Eventually(t, func() bool { return h.ctrl.Snapshot().Elapsed >= 5 }, 2*time.Second, fastInterval)

	h.ctrl.Logout()
	frozen := h.ctrl.Snapshot().Elapsed
	time.Sleep(3 * fastInterval)
	assert.Equal(t, frozen, h.ctrl.Snapshot().Elapsed, "the clock stops at logout")

	ticks := h.events.clockTicks()
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
	require.NotEmpty(t, ticks)
	for i, tick := range ticks {
		assert.EqualValues(t, i+1, tick, "every tick adds exactly one second")
	}
	assert.EqualValues(t, frozen, ticks[len(ticks)-1])

	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	assert.Less(t, h.ctrl.Snapshot().Elapsed, frozen, "login resets the clock")
}

func TestLogoutClearsEverything(t *testing.T) {
	h := newHarness(t, fastInterval)
	h.backend.set(func(fb *fakeBackend) { fb.alerts = []response.EmergencyAlert{sampleAlert(7, false)} })
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	_, err := h.ctrl.VerifyQR(context.Background(), "gAAAA")
	require.NoError(t, err)

	h.ctrl.Logout()
	snap := h.ctrl.Snapshot()
	assert.Equal(t, types.StateLoggedOut, snap.State)
	assert.Nil(t, snap.Identity)
	assert.Empty(t, snap.Alerts)
	assert.Empty(t, snap.SessionID)
	assert.True(t, h.creds.IsEmpty(credentials.AdminToken))

	time.Sleep(3 * fastInterval)
	settled := h.backend.calls()
	time.Sleep(5 * fastInterval)
	assert.Equal(t, settled, h.backend.calls())
}

func TestStaleResultsDiscarded(t *testing.T) {
	h := newHarness(t, slowInterval)
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	h.ctrl.lock.Lock()
	staleEpoch := h.ctrl.epoch
	h.ctrl.lock.Unlock()

	h.ctrl.Logout()
	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	h.backend.set(func(fb *fakeBackend) { fb.alerts = []response.EmergencyAlert{sampleAlert(7, false)} })

	err := h.ctrl.refreshAlerts(context.Background(), staleEpoch)
	assert.ErrorIs(t, err, ErrSessionChanged)
	assert.Zero(t, h.ctrl.Snapshot().UnresolvedCount)

	h.backend.set(func(fb *fakeBackend) { fb.listErr = errUnauthorized })
	_ = h.ctrl.refreshAlerts(context.Background(), staleEpoch)
	assert.Equal(t, types.StateUnverified, h.ctrl.State(), "a stale rejection must not end the new session")
}

func TestVitalsKeepLastSample(t *testing.T) {
	h := newHarness(t, slowInterval)
	first := &response.VitalSignsSample{BloodPressure: types.Some("120/80"), Oxygen: types.Some("98"), HeartRate: types.Some("72")}
	h.telemetry.samples = []*response.VitalSignsSample{first, nil, nil}
	h.telemetry.errs = []error{nil, errors.New("feed down"), nil}

	require.NoError(t, h.ctrl.Login(context.Background(), "admin", "goodpass"))
	_, err := h.ctrl.VerifyQR(context.Background(), "gAAAA")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		vitals := h.ctrl.Snapshot().Vitals
		return vitals != nil && vitals.BloodPressure == "120/80"
	}, time.Second, time.Millisecond)

	h.ctrl.lock.Lock()
	epoch := h.ctrl.epoch
	h.ctrl.lock.Unlock()
	h.ctrl.refreshVitals(context.Background(), epoch)
	h.ctrl.refreshVitals(context.Background(), epoch)

	snap := h.ctrl.Snapshot()
	require.NotNil(t, snap.Vitals)
	assert.Equal(t, "120/80", snap.Vitals.BloodPressure)
	assert.Equal(t, "72", snap.Vitals.HeartRate)
}

func TestLoginDoesNotWaitForVitals(t *testing.T) {
	h := newHarness(t, slowInterval)
	h.backend.set(func(fb *fakeBackend) { fb.alerts = []response.EmergencyAlert{sampleAlert(7, false)} })
	h.telemetry.block = make(chan struct{})
	h.telemetry.samples = []*response.VitalSignsSample{{HeartRate: types.Some("72")}}
	h.telemetry.errs = []error{nil}

	done := make(chan error, 1)
	go func() { done <- h.ctrl.Login(context.Background(), "admin", "goodpass") }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		close(h.telemetry.block)
		t.Fatal("login waited for the vitals feed")
	}
	assert.Equal(t, 1, h.ctrl.Snapshot().UnresolvedCount, "alerts are loaded before login returns")
	assert.Zero(t, h.telemetry.callCount())

	_, err := h.ctrl.VerifyQR(context.Background(), "gAAAA")
	require.NoError(t, err)
	assert.Equal(t, "N/A", h.ctrl.Snapshot().Vitals.HeartRate)

	close(h.telemetry.block)
	assert.Eventually(t, func() bool { return h.ctrl.Snapshot().Vitals.HeartRate == "72" }, time.Second, time.Millisecond)
}

func TestResumeStoredCredential(t *testing.T) {
	h := newHarness(t, slowInterval)
	assert.False(t, h.ctrl.Resume())
	assert.Zero(t, h.backend.calls())

	require.NoError(t, h.creds.Set(credentials.AdminToken, "tok-old"))
	assert.True(t, h.ctrl.Resume())
	assert.Equal(t, types.StateUnverified, h.ctrl.State(), "identity is never restored")
	assert.Equal(t, 1, h.backend.calls())

	h.ctrl.Shutdown()
	assert.Equal(t, types.StateLoggedOut, h.ctrl.State())
	assert.Equal(t, "tok-old", h.creds.Get(credentials.AdminToken), "shutdown keeps the credential")
}

func TestLogoutWhileLoggedOutDropsStoredCredential(t *testing.T) {
	h := newHarness(t, slowInterval)
	require.NoError(t, h.creds.Set(credentials.AdminToken, "tok-old"))

	h.ctrl.Logout()
	assert.True(t, h.creds.IsEmpty(credentials.AdminToken))
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	h := newHarness(t, slowInterval)

	msg, err := h.ctrl.Register(context.Background(), "ops", "ops@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Admin registered successfully", msg)

	_, err = h.ctrl.Register(context.Background(), "taken", "ops@example.com", "pw")
	require.ErrorIs(t, err, authqrgo.ErrValidation)
	assert.Equal(t, "Username already exists", UserMessage(err))
	assert.Equal(t, types.StateLoggedOut, h.ctrl.State())
}
