package usecase

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/brightforge/agency-leads/internal/entity"
)

const (
	leadStatusNew      = "NEW"
	lifecycleStageLead = "lead"
)

func interestLine(lead entity.Lead) string {
	line := fmt.Sprintf("%s | %s Edition ($%s)", lead.ProductName, lead.Tier, humanize.Commaf(lead.Price))
	if msg := strings.TrimSpace(lead.Message); msg != "" {
		line += "\n\nMessage: " + msg
	}
	return line
}

// Summary is the note stored on a freshly created contact.
func Summary(lead entity.Lead) string {
	return "Product Interest: " + interestLine(lead)
}

// UpdateSummary replaces the note on a contact that already existed.
func UpdateSummary(lead entity.Lead) string {
	return "Updated: " + interestLine(lead)
}

// SplitName splits on the first run of whitespace. HubSpot forms treat the
// last name as mandatory, so a single-word name is repeated as last name.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	first = fields[0]
	last = strings.Join(fields[1:], " ")
	if last == "" {
		last = first
	}
	return first, last
}

func createProperties(lead entity.Lead) ContactProperties {
	first, last := SplitName(lead.Name)
	props := ContactProperties{
		"firstname":      first,
		"lastname":       last,
		"email":          strings.TrimSpace(lead.Email),
		"phone":          strings.TrimSpace(lead.Phone),
		"hs_lead_status": leadStatusNew,
		"lifecyclestage": lifecycleStageLead,
		"message":        Summary(lead),
	}
	if company := strings.TrimSpace(lead.Company); company != "" {
		props["company"] = company
	}
	return props
}

func updateProperties(lead entity.Lead) ContactProperties {
	return ContactProperties{
		"message":        UpdateSummary(lead),
		"hs_lead_status": leadStatusNew,
	}
}
