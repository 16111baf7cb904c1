package portal

import (
	"fmt"
	"strconv"

	"github.com/authqr/operator/pkg/authqrgo/routing"
	"github.com/authqr/operator/pkg/authqrgo/routing/response"
	"github.com/authqr/operator/pkg/authqrgo/types"
)

const notAvailable = "N/A"

// Snapshot is what the console renders. Alerts, their detail and vitals are
// filled in only while an identity is verified; the unresolved count is always
// there.
type Snapshot struct {
	State           types.SessionState
	SessionID       string
	Elapsed         int64
	ElapsedText     string
	VerifyCount     int
	UnresolvedCount int
	Identity        *response.VerifiedIdentity
	Alerts          []AlertView
	Vitals          *VitalsView
}

type AlertView struct {
	ID         int64
	UserName   string
	CreatedAt  types.Timestamp
	Resolved   bool
	ResolvedAt types.Optional[types.Timestamp]
	Detail     *AlertDetail
}

type AlertDetail struct {
	Coordinates  string
	MapsURL      string
	ContactPhone string
	Email        string
	DeviceID     string
	Message      string
	PhotoURL     string
	AudioURL     string
	Vitals       VitalsView
}

type VitalsView struct {
	BloodPressure string
	Oxygen        string
	HeartRate     string
	LastUpdated   types.Timestamp
}

func (c *Controller) Snapshot() Snapshot {
	c.lock.Lock()
	defer c.lock.Unlock()

	snap := Snapshot{
		State:           c.stateLocked(),
		SessionID:       c.session.ID(),
		Elapsed:         c.clock.Elapsed(),
		ElapsedText:     c.clock.String(),
		VerifyCount:     c.gate.Count(),
		UnresolvedCount: c.session.unresolvedCount(),
	}
	identity, verified := c.gate.Identity()
	if !verified {
		return snap
	}
	snap.Identity = &identity
	vitals := newVitalsView(c.session.vitals)
	snap.Vitals = &vitals
	snap.Alerts = make([]AlertView, 0, len(c.session.alerts))
	for _, alert := range c.session.alerts {
		snap.Alerts = append(snap.Alerts, AlertView{
			ID:         alert.ID,
			UserName:   alert.UserName,
			CreatedAt:  alert.CreatedAt,
			Resolved:   alert.Resolved,
			ResolvedAt: alert.ResolvedAt,
			Detail:     c.newAlertDetail(alert, identity, vitals),
		})
	}
	return snap
}

func (c *Controller) newAlertDetail(alert response.EmergencyAlert, identity response.VerifiedIdentity, vitals VitalsView) *AlertDetail {
	return &AlertDetail{
		Coordinates:  fmt.Sprintf("%.4f, %.4f", alert.Latitude, alert.Longitude),
		MapsURL:      MapsURL(alert.Latitude, alert.Longitude),
		ContactPhone: ContactPhone(identity, alert),
		Email:        alert.UserEmail.Or(""),
		DeviceID:     alert.DeviceID.Or(""),
		Message:      alert.Message.Or(""),
		PhotoURL:     c.media.URL(alert.PhotoURL.Or("")),
		AudioURL:     c.media.URL(alert.AudioURL.Or("")),
		Vitals:       vitals,
	}
}

func newVitalsView(sample *response.VitalSignsSample) VitalsView {
	if sample == nil {
		return VitalsView{BloodPressure: notAvailable, Oxygen: notAvailable, HeartRate: notAvailable}
	}
	return VitalsView{
		BloodPressure: sample.BloodPressure.Or(notAvailable),
		Oxygen:        sample.Oxygen.Or(notAvailable),
		HeartRate:     sample.HeartRate.Or(notAvailable),
		LastUpdated:   sample.LastUpdated,
	}
}

func MapsURL(latitude, longitude float64) string {
	return routing.MapsURL + "?q=" + strconv.FormatFloat(latitude, 'f', -1, 64) + "," + strconv.FormatFloat(longitude, 'f', -1, 64)
}

// ContactPhone prefers the verified identity's phone over the one on the
// alert.
func ContactPhone(identity response.VerifiedIdentity, alert response.EmergencyAlert) string {
	if identity.Phone != "" {
		return identity.Phone
	}
	return alert.UserPhone.Or(notAvailable)
}
