package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/versemark/versemark-server/internal/http/response"
)

// EnvelopeVersion is bumped when the envelope shape changes.
// Plain handlers write the same shape through the response package.
const EnvelopeVersion = response.Version

// Envelope is the JSON wrapper around every API response body.
type Envelope struct {
	Version int       `json:"v" doc:"Envelope version"`
	Success bool      `json:"success" doc:"Whether the request succeeded"`
	Data    any       `json:"data,omitempty" doc:"Response payload"`
	Error   *APIError `json:"error,omitempty" doc:"Error details when success is false"`
}

// EnvelopeTransformer wraps response bodies in an Envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return Envelope{Version: EnvelopeVersion, Error: apiErr}, nil
	}
	if _, ok := v.(Envelope); ok {
		return v, nil
	}
	return Envelope{
		Version: EnvelopeVersion,
		Success: !strings.HasPrefix(status, "4") && !strings.HasPrefix(status, "5"),
		Data:    v,
	}, nil
}
