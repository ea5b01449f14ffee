package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"paygate/internal/models"
)

var ErrInvalidJSON = errors.New("invalid JSON payload")

// JSONRequest is a request sent as a JSON document. Values under the
// sensitive keys are masked in SafeString.
type JSONRequest struct {
	Data      models.JSON
	Sensitive []string
}

func NewJSONRequest(data models.JSON, sensitive ...string) *JSONRequest {
	return &JSONRequest{Data: data, Sensitive: sensitive}
}

func (r *JSONRequest) String() string {
	return encodeJSON(r.Data)
}

func (r *JSONRequest) SafeString() string {
	return encodeJSON(MaskFields(r.Data, r.Sensitive))
}

// JSONResponse is a decoded JSON response body. Concrete gateway responses
// embed it and read fields through Get.
type JSONResponse struct {
	raw       string
	data      models.JSON
	sensitive []string
}

// NewJSONResponse decodes raw. The top level value must be an object.
func NewJSONResponse(raw []byte, sensitive ...string) (*JSONResponse, error) {
	var data models.JSON
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: body is not an object", ErrInvalidJSON)
	}
	return &JSONResponse{
		raw:       string(raw),
		data:      data,
		sensitive: sensitive,
	}, nil
}

// Get returns the decoded value of a top level key, nil when absent.
func (r *JSONResponse) Get(key string) interface{} {
	return r.data[key]
}

// Decoded returns a deep copy of the whole decoded body.
func (r *JSONResponse) Decoded() models.JSON {
	return MaskFields(r.data, nil)
}

// String returns the raw body as received.
func (r *JSONResponse) String() string {
	return r.raw
}

func (r *JSONResponse) SafeString() string {
	if len(r.sensitive) == 0 {
		return r.raw
	}
	return encodeJSON(MaskFields(r.data, r.sensitive))
}

func encodeJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
