package mail

import "gopkg.in/gomail.v2"

type LeadNotificationData struct {
	Name        string
	Email       string
	Phone       string
	Company     string
	ProductName string
	Tier        string
	Price       string
	Message     string
	ContactID   string
	Updated     bool
	ReceivedAt  string
}

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	To     string
	Dialer Dialer
}
