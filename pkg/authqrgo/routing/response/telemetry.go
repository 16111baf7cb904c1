package response

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/authqr/operator/pkg/authqrgo/types"
)

// VitalSignsSample is the newest entry of the telemetry channel. Readings are
// kept as the feed reports them; the channel does not type its fields.
type VitalSignsSample struct {
	BloodPressure types.Optional[string]
	Oxygen        types.Optional[string]
	HeartRate     types.Optional[string]
	LastUpdated   types.Timestamp
}

// TelemetryFeedResponse wraps the channel feed. Sample is nil when the channel
// has no entries yet.
type TelemetryFeedResponse struct {
	Sample *VitalSignsSample
}

func (r TelemetryFeedResponse) Decode(data []byte) (any, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("telemetry feed is not valid json")
	}
	respData := &TelemetryFeedResponse{}
	latest := gjson.GetBytes(data, "feeds.0")
	if !latest.Exists() {
		return respData, nil
	}

	sample := &VitalSignsSample{
		BloodPressure: types.Some(latest.Get("field1").String()),
		Oxygen:        types.Some(latest.Get("field2").String()),
		HeartRate:     types.Some(latest.Get("field3").String()),
	}
	if createdAt := latest.Get("created_at").String(); createdAt != "" {
		ts, err := types.ParseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		sample.LastUpdated = ts
	}
	respData.Sample = sample
	return respData, nil
}
