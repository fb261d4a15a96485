package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brightforge/agency-leads/internal/entity"
)

type SyncLeadUseCase struct {
	Clients   CRMClientFactory
	Publisher LeadEventPublisher
	Journal   SyncJournal
	Locks     *KeyedLock
	Clock     clock.Clock
	Logger    *zap.Logger
}

// NewSyncLeadUseCase wires the sync routine. publisher and journal may be
// nil when RabbitMQ or Postgres are not configured.
func NewSyncLeadUseCase(
	clients CRMClientFactory,
	publisher LeadEventPublisher,
	journal SyncJournal,
	logger *zap.Logger,
) *SyncLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncLeadUseCase{
		Clients:   clients,
		Publisher: publisher,
		Journal:   journal,
		Locks:     NewKeyedLock(),
		Clock:     clock.New(),
		Logger:    logger,
	}
}

// Execute pushes the lead to the CRM: create first, and on a duplicate
// email fall back to search and update. It never panics or returns an
// error; every failure is a SyncResult with OutcomeFailed.
func (uc *SyncLeadUseCase) Execute(ctx context.Context, lead entity.Lead) (result SyncResult) {
	unlock := uc.Locks.Lock(emailKey(lead.Email))
	defer unlock()

	defer func() {
		if rec := recover(); rec != nil {
			uc.Logger.Error("lead sync panicked", zap.Any("panic", rec), zap.String("email", lead.Email))
			result = failed(&TechnicalError{
				Code:    "SYNC_PANIC",
				Message: fmt.Sprintf("lead sync panicked: %v", rec),
			})
		}
		uc.record(ctx, lead, result)
	}()

	return uc.sync(ctx, lead)
}

func (uc *SyncLeadUseCase) sync(ctx context.Context, lead entity.Lead) SyncResult {
	client, err := uc.Clients.Client(ctx)
	if err != nil {
		uc.Logger.Error("crm client unavailable", zap.Error(err))
		return failed(err)
	}

	contactID, err := client.CreateContact(ctx, createProperties(lead))
	if err == nil {
		uc.Logger.Info("crm contact created",
			zap.String("contact_id", contactID),
			zap.String("product", lead.ProductName),
			zap.String("tier", lead.Tier))
		return created(contactID)
	}

	if !errors.Is(err, ErrContactExists) {
		uc.Logger.Error("crm contact create failed", zap.Error(err), zap.String("email", lead.Email))
		return failed(err)
	}

	uc.Logger.Info("crm contact exists, updating", zap.String("email", lead.Email))
	return uc.updateExisting(ctx, lead, err)
}

func (uc *SyncLeadUseCase) updateExisting(ctx context.Context, lead entity.Lead, createErr error) SyncResult {
	client, err := uc.Clients.Client(ctx)
	if err != nil {
		uc.Logger.Error("crm client unavailable for update", zap.Error(err))
		return failed(err)
	}

	contactID, err := client.FindContactByEmail(ctx, lead.Email)
	if err != nil {
		if errors.Is(err, ErrContactNotFound) {
			uc.Logger.Warn("crm reported conflict but search found no contact", zap.String("email", lead.Email))
			return failed(createErr)
		}
		uc.Logger.Error("crm contact search failed", zap.Error(err))
		return failed(err)
	}

	if err := client.UpdateContact(ctx, contactID, updateProperties(lead)); err != nil {
		uc.Logger.Error("crm contact update failed", zap.Error(err), zap.String("contact_id", contactID))
		return failed(err)
	}

	uc.Logger.Info("crm contact updated", zap.String("contact_id", contactID))
	return updated(contactID)
}

// record journals the outcome and announces successful syncs. Both are
// best effort and never change the result.
func (uc *SyncLeadUseCase) record(ctx context.Context, lead entity.Lead, result SyncResult) {
	now := uc.now()

	if uc.Journal != nil {
		event := &entity.SyncEvent{
			ID:          uuid.New().String(),
			Email:       emailKey(lead.Email),
			Outcome:     string(result.Outcome),
			ContactID:   result.ContactID,
			Error:       result.Err,
			ProductName: lead.ProductName,
			Tier:        lead.Tier,
			CreatedAt:   now,
		}
		if err := uc.Journal.Insert(ctx, event); err != nil {
			uc.Logger.Warn("sync journal write failed", zap.Error(err))
		}
	}

	if uc.Publisher == nil || !result.Success() {
		return
	}

	event := entity.LeadSyncedEvent{
		EventID:     uuid.New().String(),
		ContactID:   result.ContactID,
		Updated:     result.Updated(),
		Name:        lead.Name,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Company:     lead.Company,
		ProductName: lead.ProductName,
		Tier:        lead.Tier,
		Price:       lead.Price,
		Message:     lead.Message,
		OccurredAt:  now,
	}
	if err := uc.Publisher.PublishLeadSynced(ctx, event); err != nil {
		uc.Logger.Warn("lead synced event not published", zap.Error(err), zap.String("contact_id", result.ContactID))
	}
}

func (uc *SyncLeadUseCase) now() time.Time {
	if uc.Clock == nil {
		return clock.New().Now()
	}
	return uc.Clock.Now()
}
