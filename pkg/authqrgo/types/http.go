package types

type ContentType string

const (
	ContentTypeNone ContentType = ""
	ContentTypeJSON ContentType = "application/json"
)

type HeaderOpts struct {
	WithBearer    bool
	WithRequestID bool
	Extra         map[string]string
}
