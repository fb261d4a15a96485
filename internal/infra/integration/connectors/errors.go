package connectors

import "fmt"

// CredentialError reports that no CRM access token could be obtained.
type CredentialError struct {
	Reason string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crm credential: %s: %v", e.Reason, e.Err)
	}
	return "crm credential: " + e.Reason
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}
