package usecase

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	domain := fmt.Errorf("validate: %w", &DomainError{Code: "MISSING_FIELDS", Message: MissingFieldsMessage})
	technical := fmt.Errorf("sync: %w", &TechnicalError{Code: "SYNC_PANIC", Message: "boom"})

	assert.True(t, IsDomainError(domain))
	assert.False(t, IsTechnicalError(domain))
	assert.True(t, IsTechnicalError(technical))
	assert.False(t, IsDomainError(technical))
	assert.False(t, IsDomainError(errors.New("plain")))
}
