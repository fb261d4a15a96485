package entity

import (
	"context"
	"time"
)

// Lead is a product-interest submission from the site. It only lives for
// the duration of the request that carries it.
type Lead struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Company     string  `json:"company,omitempty"`
	ProductName string  `json:"productName"`
	Tier        string  `json:"tier"`
	Price       float64 `json:"price"`
	Message     string  `json:"message,omitempty"`
}

// SyncEvent is one journal row describing how a lead sync ended.
type SyncEvent struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Outcome     string    `json:"outcome"` // CREATED, UPDATED, FAILED
	ContactID   string    `json:"contact_id,omitempty"`
	Error       string    `json:"error,omitempty"`
	ProductName string    `json:"product_name"`
	Tier        string    `json:"tier"`
	CreatedAt   time.Time `json:"created_at"`
}

type SyncEventRepositoryInterface interface {
	Insert(ctx context.Context, event *SyncEvent) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// LeadSyncedEvent is published once a lead has reached the CRM.
type LeadSyncedEvent struct {
	EventID     string    `json:"event_id"`
	ContactID   string    `json:"contact_id"`
	Updated     bool      `json:"updated"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Company     string    `json:"company,omitempty"`
	ProductName string    `json:"product_name"`
	Tier        string    `json:"tier"`
	Price       float64   `json:"price"`
	Message     string    `json:"message,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
