package authqrgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/proxy"

	"github.com/authqr/operator/pkg/authqrgo/routing"
	"github.com/authqr/operator/pkg/authqrgo/routing/query"
	"github.com/authqr/operator/pkg/authqrgo/routing/response"
)

type TelemetryOpts struct {
	BaseURL   string
	ChannelID string
	ReadKey   string
	Timeout   time.Duration
}

// TelemetryClient reads the vital-signs channel. It is unauthenticated apart
// from the channel read key.
type TelemetryClient struct {
	Logger     zerolog.Logger
	baseURL    string
	channelID  string
	readKey    string
	http       *http.Client
	httpProxy  func(*http.Request) (*url.URL, error)
	socksProxy proxy.Dialer
}

func NewTelemetryClient(opts *TelemetryOpts, logger zerolog.Logger) *TelemetryClient {
	tc := &TelemetryClient{
		Logger:    logger,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		channelID: opts.ChannelID,
		readKey:   opts.ReadKey,
		http:      newHTTPClient(opts.Timeout),
	}
	if tc.baseURL == "" {
		tc.baseURL = routing.DefaultTelemetryBaseURL
	}
	return tc
}

func (tc *TelemetryClient) SetProxy(proxyAddr string) error {
	return setProxy(tc.http, proxyAddr, &tc.httpProxy, &tc.socksProxy, tc.Logger)
}

// FetchLatestVitals returns the newest sample, or nil when the channel is
// empty.
func (tc *TelemetryClient) FetchLatestVitals(ctx context.Context) (*response.VitalSignsSample, error) {
	if tc.channelID == "" {
		return nil, fmt.Errorf("telemetry channel id is not configured")
	}

	feedQuery := &query.TelemetryFeedQuery{
		APIKey:  tc.readKey,
		Results: 1,
	}
	encodedQuery, err := feedQuery.Encode()
	if err != nil {
		return nil, err
	}
	feedURL := tc.baseURL + fmt.Sprintf(routing.TelemetryFeedURL, url.PathEscape(tc.channelID)) + "?" + string(encodedQuery)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header = defaultConstantHeaders.Clone()

	resp, err := tc.http.Do(req)
	if err != nil {
		return nil, newTransportError("fetch telemetry feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: telemetry feed returned %s", ErrTransport, resp.Status)
	}

	data, err := readLimited(resp)
	if err != nil {
		return nil, newTransportError("read telemetry feed", err)
	}

	respData, err := response.TelemetryFeedResponse{}.Decode(data)
	if err != nil {
		return nil, newTransportError("decode telemetry feed", err)
	}
	feed, ok := respData.(*response.TelemetryFeedResponse)
	if !ok {
		return nil, newErrorResponseTypeAssertFailed("*response.TelemetryFeedResponse")
	}
	return feed.Sample, nil
}
