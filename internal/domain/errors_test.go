package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("campo inválido")))
	assert.Equal(t, KindBusinessRule, KindOf(BusinessRule(ReasonNoOpenShift, "sin caja")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("no existe")))
	assert.Equal(t, KindTransient, KindOf(Transient(errors.New("deadlock"))))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("algo raro")))
	assert.Equal(t, KindUnexpected, KindOf(nil))
}

func TestIsMatchesReasonThroughWrapping(t *testing.T) {
	err := BusinessRule(ReasonInsufficientStock, "stock insuficiente")
	assert.True(t, Is(err, ReasonInsufficientStock))
	assert.False(t, Is(err, ReasonNoOpenShift))

	wrapped := fmt.Errorf("crear venta: %w", err)
	assert.True(t, Is(wrapped, ReasonInsufficientStock))

	assert.False(t, Is(errors.New("plano"), ReasonInsufficientStock))
}

func TestClassifyPassthrough(t *testing.T) {
	original := BusinessRule(ReasonShiftAlreadyOpen, "caja ya abierta")
	assert.Equal(t, original, Classify(original))
	assert.Nil(t, Classify(nil))
}

func TestClassifyRecordNotFound(t *testing.T) {
	err := Classify(gorm.ErrRecordNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	err = Classify(fmt.Errorf("buscar caja: %w", gorm.ErrRecordNotFound))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestClassifyPostgresConflicts(t *testing.T) {
	serial := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, KindTransient, KindOf(Classify(serial)))

	deadlock := &pgconn.PgError{Code: "40P01"}
	assert.Equal(t, KindTransient, KindOf(Classify(deadlock)))

	// The loser of a rank race retries; the loser of an open race gets the
	// same business reason as the in-tx check.
	rankRace := &pgconn.PgError{Code: "23505", ConstraintName: "idx_precio_producto_orden"}
	assert.Equal(t, KindTransient, KindOf(Classify(rankRace)))

	openRace := &pgconn.PgError{Code: "23505", ConstraintName: "idx_caja_abierta_unica"}
	assert.True(t, Is(Classify(openRace), ReasonShiftAlreadyOpen))

	otherUnique := &pgconn.PgError{Code: "23505"}
	assert.Equal(t, KindTransient, KindOf(Classify(otherUnique)))
}

func TestErrorMessageHidesCauseFromClients(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Unexpected(cause)
	assert.Equal(t, "error interno del servidor", err.Msg)
	assert.ErrorIs(t, err, cause)
}
