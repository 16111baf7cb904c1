package connector

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/authqr/operator/pkg/authqrgo/types"
	"github.com/authqr/operator/pkg/portal"
)

const timeLayout = "2006-01-02 15:04:05"

func formatTimestamp(ts types.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(timeLayout)
}

// WriteSnapshot renders the monitoring view. Before an identity is verified
// only the unresolved count is shown.
func WriteSnapshot(w io.Writer, snap portal.Snapshot) {
	var sb strings.Builder
	switch snap.State {
	case types.StateLoggedOut:
		sb.WriteString("Not logged in.\n")
		_, _ = io.WriteString(w, sb.String())
		return
	case types.StateUnverified:
		sb.WriteString("Identity: not verified\n")
		fmt.Fprintf(&sb, "Session %s | verifications %d | unresolved alerts %d\n",
			snap.ElapsedText, snap.VerifyCount, snap.UnresolvedCount)
		sb.WriteString("Verify an identity to see alerts.\n")
		_, _ = io.WriteString(w, sb.String())
		return
	case types.StateVerified:
		fmt.Fprintf(&sb, "Identity: %s <%s> phone %s voter %s pan %s\n",
			snap.Identity.Name, snap.Identity.Email, snap.Identity.Phone, snap.Identity.VoterID, snap.Identity.PanID)
		writeIdentityExtra(&sb, snap.Identity.Extra)
	}
	fmt.Fprintf(&sb, "Session %s | verifications %d | unresolved alerts %d\n",
		snap.ElapsedText, snap.VerifyCount, snap.UnresolvedCount)

	if snap.Vitals != nil {
		fmt.Fprintf(&sb, "Vitals: BP %s | SpO2 %s | HR %s | updated %s\n",
			snap.Vitals.BloodPressure, snap.Vitals.Oxygen, snap.Vitals.HeartRate, formatTimestamp(snap.Vitals.LastUpdated))
	}

	if len(snap.Alerts) == 0 {
		sb.WriteString("No emergency alerts.\n")
	}
	for _, alert := range snap.Alerts {
		writeAlert(&sb, alert)
	}
	_, _ = io.WriteString(w, sb.String())
}

func writeAlert(sb *strings.Builder, alert portal.AlertView) {
	status := "ACTIVE"
	if alert.Resolved {
		status = "resolved"
		if resolvedAt, ok := alert.ResolvedAt.Get(); ok {
			status += " " + formatTimestamp(resolvedAt)
		}
	}
	fmt.Fprintf(sb, "#%d %s | %s | %s\n", alert.ID, alert.UserName, formatTimestamp(alert.CreatedAt), status)

	detail := alert.Detail
	if detail == nil {
		return
	}
	fmt.Fprintf(sb, "    location: %s  %s\n", detail.Coordinates, detail.MapsURL)
	fmt.Fprintf(sb, "    contact:  %s\n", detail.ContactPhone)
	if detail.Email != "" {
		fmt.Fprintf(sb, "    email:    %s\n", detail.Email)
	}
	if detail.DeviceID != "" {
		fmt.Fprintf(sb, "    device:   %s\n", detail.DeviceID)
	}
	if detail.Message != "" {
		fmt.Fprintf(sb, "    message:  %s\n", detail.Message)
	}
	if detail.PhotoURL != "" {
		fmt.Fprintf(sb, "    photo:    %s\n", detail.PhotoURL)
	}
	if detail.AudioURL != "" {
		fmt.Fprintf(sb, "    audio:    %s\n", detail.AudioURL)
	}
	fmt.Fprintf(sb, "    vitals:   BP %s | SpO2 %s | HR %s\n",
		detail.Vitals.BloodPressure, detail.Vitals.Oxygen, detail.Vitals.HeartRate)
}

func writeIdentityExtra(sb *strings.Builder, extra map[string]any) {
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(sb, "    %s: %v\n", key, extra[key])
	}
}

func WriteUserCard(w io.Writer, card *UserCard) {
	fmt.Fprintf(w, "User:         %s <%s>\n", card.Name, card.Email)
	if card.UserID != "" {
		fmt.Fprintf(w, "User ID:      %s\n", card.UserID)
	}
	if card.EncryptedQR != "" {
		fmt.Fprintf(w, "QR payload:   %s\n", card.EncryptedQR)
	}
	if card.QRImageURL != "" {
		fmt.Fprintf(w, "QR image:     %s\n", card.QRImageURL)
	}
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
