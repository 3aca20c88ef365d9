// Package domain defines the business error taxonomy shared by all services.
// Every error that crosses a service boundary is one of five kinds, so that
// handlers can map it to a status code and callers can decide whether a retry
// makes sense without parsing message strings.
package domain

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind classifies an error for propagation and HTTP mapping.
type Kind int

const (
	KindValidation   Kind = iota // rejected before any transaction opens
	KindBusinessRule             // invariant violation — full rollback, precise reason
	KindNotFound
	KindTransient // lock conflict / connection failure — safe to retry whole op
	KindUnexpected
)

// Reason identifies the specific business rule that was violated.
type Reason string

const (
	ReasonShiftAlreadyOpen        Reason = "SHIFT_ALREADY_OPEN"
	ReasonShiftAlreadyClosed      Reason = "SHIFT_ALREADY_CLOSED"
	ReasonNoOpenShift             Reason = "NO_OPEN_SHIFT"
	ReasonInsufficientStock       Reason = "INSUFFICIENT_STOCK"
	ReasonPriceUnavailable        Reason = "PRICE_UNAVAILABLE"
	ReasonAuthorizationNotPending Reason = "AUTHORIZATION_NOT_PENDING"
)

// Error carries the kind, the optional rule reason, and a user-facing message.
// The wrapped cause (if any) is for logs only and never reaches clients.
type Error struct {
	Kind   Kind
	Reason Reason
	Msg    string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.cause }

// Validation builds a pre-transaction input rejection.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// BusinessRule builds a mid-transaction rule violation with a precise reason.
func BusinessRule(reason Reason, msg string) *Error {
	return &Error{Kind: KindBusinessRule, Reason: reason, Msg: msg}
}

// NotFound builds a missing-entity error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Transient marks a storage conflict the caller may retry from scratch.
func Transient(err error) *Error {
	return &Error{Kind: KindTransient, Msg: "conflicto transitorio de almacenamiento, reintente la operación", cause: err}
}

// Unexpected wraps anything else. The message shown to clients is opaque;
// the cause goes to the server log.
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Msg: "error interno del servidor", cause: err}
}

// KindOf returns the kind of err, defaulting to KindUnexpected.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// Is reports whether err is a business-rule violation with the given reason.
func Is(err error, reason Reason) bool {
	var de *Error
	return errors.As(err, &de) && de.Reason == reason
}

// Classify normalizes storage-layer errors into the taxonomy. Domain errors
// pass through untouched; gorm's not-found becomes KindNotFound; PostgreSQL
// serialization failures, deadlocks and unique-index race rejections become
// retryable KindTransient, except the open-shift backstop which carries its
// business reason.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("registro no encontrado")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return Transient(err)
		case "23505": // unique_violation — the index backstops reject the
			// loser of a race the in-tx checks could not see.
			if pgErr.ConstraintName == "idx_caja_abierta_unica" {
				return BusinessRule(ReasonShiftAlreadyOpen,
					"ya existe una caja abierta para este usuario en la sucursal")
			}
			return Transient(err)
		}
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return Transient(err)
	}
	return Unexpected(err)
}
