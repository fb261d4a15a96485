package usecase

import (
	"strings"

	"github.com/brightforge/agency-leads/internal/entity"
)

const MissingFieldsMessage = "Missing required fields"

// ValidateLead checks that every field the CRM contact needs is present.
// Company, price and message are optional.
func ValidateLead(lead entity.Lead) error {
	var missing []string

	required := []struct {
		field string
		value string
	}{
		{"name", lead.Name},
		{"email", lead.Email},
		{"phone", lead.Phone},
		{"productName", lead.ProductName},
		{"tier", lead.Tier},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}

	if len(missing) > 0 {
		return &DomainError{
			Code:    "MISSING_FIELDS",
			Message: MissingFieldsMessage,
			Fields:  missing,
		}
	}
	return nil
}
