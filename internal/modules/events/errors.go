package events

import "errors"

var (
	ErrCredentialsMissing = errors.New("google cloud credentials not found")
	ErrBudgetExceeded     = errors.New("daily warehouse query budget exhausted")
	ErrWarehouse          = errors.New("warehouse query failed")
)

type ErrorKind string

const (
	KindNone        ErrorKind = ""
	KindCredentials ErrorKind = "credentials"
	KindBudget      ErrorKind = "budget"
	KindWarehouse   ErrorKind = "warehouse"
)

func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrCredentialsMissing):
		return KindCredentials
	case errors.Is(err, ErrBudgetExceeded):
		return KindBudget
	default:
		return KindWarehouse
	}
}
