package usecase

import (
	"context"

	"github.com/brightforge/agency-leads/internal/entity"
)

// ContactProperties are CRM contact fields keyed by their internal name.
type ContactProperties map[string]string

type CRMClient interface {
	CreateContact(ctx context.Context, props ContactProperties) (string, error)
	// FindContactByEmail returns ErrContactNotFound when nothing matches.
	FindContactByEmail(ctx context.Context, email string) (string, error)
	UpdateContact(ctx context.Context, contactID string, props ContactProperties) error
}

type CRMClientFactory interface {
	Client(ctx context.Context) (CRMClient, error)
}

type LeadEventPublisher interface {
	PublishLeadSynced(ctx context.Context, event entity.LeadSyncedEvent) error
}

type SyncJournal interface {
	Insert(ctx context.Context, event *entity.SyncEvent) error
}
