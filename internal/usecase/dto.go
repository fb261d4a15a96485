package usecase

type Outcome string

const (
	OutcomeCreated Outcome = "CREATED"
	OutcomeUpdated Outcome = "UPDATED"
	OutcomeFailed  Outcome = "FAILED"
)

// SyncResult is how a lead sync ended. ContactID is set for created and
// updated outcomes, Err only for failed ones.
type SyncResult struct {
	Outcome   Outcome
	ContactID string
	Err       string
}

func (r SyncResult) Success() bool {
	return r.Outcome == OutcomeCreated || r.Outcome == OutcomeUpdated
}

func (r SyncResult) Updated() bool {
	return r.Outcome == OutcomeUpdated
}

func created(contactID string) SyncResult {
	return SyncResult{Outcome: OutcomeCreated, ContactID: contactID}
}

func updated(contactID string) SyncResult {
	return SyncResult{Outcome: OutcomeUpdated, ContactID: contactID}
}

func failed(err error) SyncResult {
	return SyncResult{Outcome: OutcomeFailed, Err: err.Error()}
}
