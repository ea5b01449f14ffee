// Package applepay implements Apple Pay merchant validation: the request
// sent to Apple's validation endpoint and the merchant session it returns.
package applepay

import (
	"paygate/internal/gateway/api"
	"paygate/internal/models"
)

// Response is the Apple Pay merchant validation response. Missing fields
// read as nil; callers decide whether a session is usable.
type Response struct {
	*api.JSONResponse
}

// NewResponse decodes a raw validation response body.
func NewResponse(raw []byte) (*Response, error) {
	resp, err := api.NewJSONResponse(raw, "signature", "merchantSessionIdentifier", "nonce")
	if err != nil {
		return nil, err
	}
	return &Response{JSONResponse: resp}, nil
}

func (r *Response) StatusCode() interface{} {
	return r.Get("statusCode")
}

func (r *Response) StatusMessage() interface{} {
	return r.Get("statusMessage")
}

// MerchantSession returns a copy of the validated merchant session, the whole
// decoded body, to be handed unmodified to the Apple Pay JS session.
func (r *Response) MerchantSession() models.JSON {
	return r.Decoded()
}
