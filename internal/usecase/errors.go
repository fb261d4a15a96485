package usecase

import "errors"

var (
	// ErrContactExists is matched by CRM errors that report a duplicate
	// email on create.
	ErrContactExists = errors.New("contact already exists")

	ErrContactNotFound = errors.New("contact not found")
)

type DomainError struct {
	Code    string
	Message string
	Fields  []string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is an internal fault that is not the caller's doing.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}
