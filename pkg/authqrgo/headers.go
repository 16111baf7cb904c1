package authqrgo

import (
	"net/http"

	"go.mau.fi/util/random"

	"github.com/authqr/operator/pkg/authqrgo/credentials"
	"github.com/authqr/operator/pkg/authqrgo/types"
)

const ClientName = "authqr-operator"
const ClientVersion = "0.3.0"
const UserAgent = ClientName + "/" + ClientVersion

var defaultConstantHeaders = http.Header{
	"Accept":          []string{"application/json, text/plain, */*"},
	"Accept-Language": []string{"en-US,en;q=0.9"},
	"User-Agent":      []string{UserAgent},
}

func newRequestID() string {
	return random.String(16)
}

func (c *Client) buildHeaders(opts types.HeaderOpts) http.Header {
	headers := defaultConstantHeaders.Clone()

	if opts.WithBearer {
		if token := c.credentials.Get(credentials.AdminToken); token != "" {
			headers.Set("Authorization", "Bearer "+token)
		}
	}

	if opts.WithRequestID {
		headers.Set("X-Request-ID", newRequestID())
	}

	for k, v := range opts.Extra {
		headers.Set(k, v)
	}

	return headers
}
