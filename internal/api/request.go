package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxBodySize caps request bodies at 4 MB. Metric batches from busy
// monitoring agents are the largest payloads this service accepts.
const MaxBodySize = 4 << 20

// DecodeJSON decodes a JSON request body into dst. Unknown fields and
// bodies over MaxBodySize are rejected, and decoder internals are
// translated into messages an API client can act on.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return errors.New("request body contains more than one JSON value")
	}
	return nil
}

func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, io.EOF):
		return errors.New("empty request body")
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("invalid JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Errorf("field %q has the wrong type, expected %s", typeErr.Field, typeErr.Type)
		}
		return errors.New("request body has the wrong JSON type")
	case errors.As(err, &maxBytesErr):
		return fmt.Errorf("request body larger than %d bytes", MaxBodySize)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return fmt.Errorf("unrecognized field %s", field)
	default:
		return errors.New("could not parse request body")
	}
}
