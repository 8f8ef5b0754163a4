// File: igbridge/models/handoff.go
package models

import "time"

// CredentialBundle is the result of a completed OAuth flow, parked until the
// device that started it polls for it.
type CredentialBundle struct {
	Ready             bool      `json:"ready"`
	AccessToken       string    `json:"token"` // Long-lived user access token
	BusinessAccountID string    `json:"igid"`  // Instagram business account id
	CreatedAt         time.Time `json:"ts"`    // When the flow completed
}

// PageCandidate is a Facebook Page managed by the user, with the Instagram
// account linked to it if there is one.
type PageCandidate struct {
	ID                string `json:"id"`
	BusinessAccountID string `json:"-"`
}

// ExchangeResponse is the body returned to a polling device.
type ExchangeResponse struct {
	Ready       bool   `json:"ready"`
	AccessToken string `json:"access_token,omitempty"`
	IGUserID    string `json:"ig_user_id,omitempty"`
}

// NewExchangeResponse renders a bundle for the poller. A nil bundle means
// nothing is ready yet.
func NewExchangeResponse(bundle *CredentialBundle) ExchangeResponse {
	if bundle == nil || !bundle.Ready {
		return ExchangeResponse{Ready: false}
	}
	return ExchangeResponse{
		Ready:       true,
		AccessToken: bundle.AccessToken,
		IGUserID:    bundle.BusinessAccountID,
	}
}
