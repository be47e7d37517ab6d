package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnauthenticated means the credential token is missing, invalid, expired
// or blacklisted. It terminates session setup.
var ErrUnauthenticated = errors.New("authentification échouée")

// InsufficientBalanceError is a business-rule violation: the requested leave
// days exceed the remaining balance. It carries the figures shown to the
// user.
type InsufficientBalanceError struct {
	Type      string
	Available int
	Requested int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("solde insuffisant: disponible %d jour(s), demandé %d jour(s)", e.Available, e.Requested)
}

// InvalidRangeError means the requested leave period is unusable: the end
// precedes the start, or the range contains no business day at all.
type InvalidRangeError struct {
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("période invalide (%s - %s): %s",
		e.Start.Format("02/01/2006"), e.End.Format("02/01/2006"), e.Reason)
}

// InvalidStateError means a terminal leave request was asked to transition
// again. This is caller misuse and fails fast rather than silently
// overwriting.
type InvalidStateError struct {
	RequestID string
	Status    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("demande %s déjà traitée (statut %s)", e.RequestID, e.Status)
}
