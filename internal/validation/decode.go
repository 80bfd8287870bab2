package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/developia-II/catalog-api/utils"
)

// DecodeJSON decodes exactly one JSON document from r into dst, refusing
// fields dst does not declare.
func DecodeJSON(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return utils.BadRequest("Request body must contain a single JSON object")
	}
	return nil
}

func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, io.EOF):
		return utils.BadRequest("Request body is required")
	case errors.As(err, &maxBytesErr):
		return utils.NewAppError(fmt.Sprintf("Request body must not exceed %d bytes", maxBytesErr.Limit), http.StatusRequestEntityTooLarge)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return utils.BadRequest("Invalid JSON body")
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return utils.BadRequest("Request body must be a JSON object")
		}
		return utils.BadRequest(fmt.Sprintf("Validation error: %s must be of type %s", typeErr.Field, typeErr.Type))
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return utils.BadRequest(fmt.Sprintf("Validation error: %s is not allowed", field))
	default:
		return utils.BadRequest("Invalid JSON body")
	}
}
