package query

import (
	"fmt"

	"github.com/google/go-querystring/query"
)

type QRRendererQuery struct {
	Size string `url:"size"`
	Data string `url:"data"`
}

func NewQRRendererQuery(pixels int, data string) *QRRendererQuery {
	return &QRRendererQuery{
		Size: fmt.Sprintf("%dx%d", pixels, pixels),
		Data: data,
	}
}

func (p *QRRendererQuery) Encode() ([]byte, error) {
	values, err := query.Values(p)
	if err != nil {
		return nil, err
	}
	return []byte(values.Encode()), nil
}
