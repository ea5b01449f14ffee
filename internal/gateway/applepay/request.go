package applepay

import (
	"encoding/json"

	"paygate/internal/gateway/api"
)

const InitiativeWeb = "web"

// ValidationRequest is the body posted to Apple's merchant validation URL.
type ValidationRequest struct {
	MerchantIdentifier string `json:"merchantIdentifier"`
	DisplayName        string `json:"displayName"`
	Initiative         string `json:"initiative"`
	InitiativeContext  string `json:"initiativeContext"`
}

var _ api.Request = (*ValidationRequest)(nil)

func (r *ValidationRequest) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(b)
}

// SafeString masks the merchant identifier.
func (r *ValidationRequest) SafeString() string {
	safe := *r
	safe.MerchantIdentifier = api.MaskValue(safe.MerchantIdentifier)
	return safe.String()
}
