package authqrgo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/authqr/operator/pkg/authqrgo/routing"
	"github.com/authqr/operator/pkg/authqrgo/types"
)

const maxResponseSize = 8 << 20

func (c *Client) MakeRequest(ctx context.Context, url string, method string, headers http.Header, body []byte, contentType types.ContentType) (*http.Response, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, nil, err
	}
	if headers != nil {
		req.Header = headers
	}
	if contentType != types.ContentTypeNone {
		req.Header.Set("Content-Type", string(contentType))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, newTransportError(method+" "+url, err)
	}
	defer resp.Body.Close()

	data, err := readLimited(resp)
	if err != nil {
		return resp, nil, newTransportError("read response body", err)
	}

	c.Logger.Trace().
		Str("method", method).
		Str("url", url).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Int("status_code", resp.StatusCode).
		Int("body_size", len(data)).
		Msg("Request finished")

	return resp, data, nil
}

func readLimited(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
}

// MakeRoutingRequest sends a request to a known endpoint. pathArgs fill the
// format verbs of the endpoint path; kinds decides which error a non-2xx
// status becomes.
func (c *Client) MakeRoutingRequest(ctx context.Context, endpoint routing.RequestEndpointURL, p routing.PayloadDataInterface, q routing.PayloadDataInterface, kinds StatusKinds, pathArgs ...any) (*http.Response, any, error) {
	definition, ok := routing.RequestStoreDefinition[endpoint]
	if !ok {
		return nil, nil, fmt.Errorf("unknown endpoint %s", endpoint)
	}

	path := string(endpoint)
	if len(pathArgs) > 0 {
		path = fmt.Sprintf(path, pathArgs...)
	}
	url := c.baseURL + path

	if q != nil {
		encodedQuery, err := q.Encode()
		if err != nil {
			return nil, nil, err
		}
		url = url + "?" + string(encodedQuery)
	}

	var body []byte
	if p != nil {
		var err error
		body, err = p.Encode()
		if err != nil {
			return nil, nil, err
		}
	}

	headers := c.buildHeaders(definition.HeaderOpts)
	resp, respBody, err := c.MakeRequest(ctx, url, definition.Method, headers, body, definition.ContentType)
	if err != nil {
		return resp, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := parseErrorDetail(respBody)
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return resp, nil, kinds.classify(resp.StatusCode, detail)
	}

	if definition.ResponseDefinition == nil {
		return resp, nil, nil
	}

	respData, err := definition.ResponseDefinition.Decode(respBody)
	if err != nil {
		return resp, nil, newTransportError(fmt.Sprintf("decode %s response", endpoint), err)
	}
	return resp, respData, nil
}

// parseErrorDetail extracts the human readable part of an error body. The
// backend sends either {"detail": "..."} or, for rejected request bodies, a
// list of {"msg": "..."} objects under detail.
func parseErrorDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 {
			text = text[:200] + "…"
		}
		return text
	}
	detail := gjson.GetBytes(body, "detail")
	if !detail.IsArray() {
		return detail.String()
	}
	messages := make([]string, 0)
	for _, msg := range detail.Get("#.msg").Array() {
		if msg.String() != "" {
			messages = append(messages, msg.String())
		}
	}
	return strings.Join(messages, "; ")
}
