package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/gomail.v2"

	"github.com/brightforge/agency-leads/internal/entity"
)

//go:embed templates/lead_notification.html
var templateFS embed.FS

var leadTemplate = template.Must(template.ParseFS(templateFS, "templates/lead_notification.html"))

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		From:   from,
		To:     to,
		Dialer: gomail.NewDialer(host, port, user, password),
	}
}

// NotifyLeadSynced mails the sales inbox a summary of a lead that reached the CRM.
func (s *EmailSender) NotifyLeadSynced(ctx context.Context, event entity.LeadSyncedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := renderLeadNotification(event)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Reply-To", event.Email)
	m.SetHeader("Subject", subject(event))
	m.SetBody("text/html", body)

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send lead notification: %w", err)
	}

	return nil
}

func renderLeadNotification(event entity.LeadSyncedEvent) (string, error) {
	data := LeadNotificationData{
		Name:        event.Name,
		Email:       event.Email,
		Phone:       event.Phone,
		Company:     event.Company,
		ProductName: event.ProductName,
		Tier:        event.Tier,
		Price:       "$" + humanize.Commaf(event.Price),
		Message:     event.Message,
		ContactID:   event.ContactID,
		Updated:     event.Updated,
		ReceivedAt:  event.OccurredAt.Format(time.RFC1123),
	}

	var body bytes.Buffer
	if err := leadTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("render lead notification: %w", err)
	}
	return body.String(), nil
}

func subject(event entity.LeadSyncedEvent) string {
	kind := "New lead"
	if event.Updated {
		kind = "Returning lead"
	}
	return fmt.Sprintf("%s: %s (%s %s)", kind, event.Name, event.ProductName, event.Tier)
}
