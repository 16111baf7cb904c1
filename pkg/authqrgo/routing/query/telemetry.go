package query

import (
	"github.com/google/go-querystring/query"
)

type TelemetryFeedQuery struct {
	APIKey  string `url:"api_key,omitempty"`
	Results int    `url:"results"`
}

func (p *TelemetryFeedQuery) Encode() ([]byte, error) {
	values, err := query.Values(p)
	if err != nil {
		return nil, err
	}
	return []byte(values.Encode()), nil
}
