package connectors

import "time"

// Credential is a CRM access token together with the instant it stops
// being valid. A zero ExpiresAt means the exchange did not say, and the
// credential is never cached.
type Credential struct {
	AccessToken string
	ExpiresAt   time.Time
}

type connectionResponse struct {
	Items []connectionItem `json:"items"`
}

type connectionItem struct {
	Settings connectionSettings `json:"settings"`
}

type connectionSettings struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
	OAuth       struct {
		Credentials struct {
			AccessToken string `json:"access_token"`
		} `json:"credentials"`
	} `json:"oauth"`
}

func (s connectionSettings) token() string {
	if s.AccessToken != "" {
		return s.AccessToken
	}
	return s.OAuth.Credentials.AccessToken
}

func (s connectionSettings) expiry() time.Time {
	if s.ExpiresAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.ExpiresAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
