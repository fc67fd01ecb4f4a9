package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"gorm.io/gorm"

	"schoolpay_backend/pkg/apperrors"
)

// FilterOp enumerates the predicate operators the store supports.
type FilterOp string

const (
	OpEq      FilterOp = "eq"
	OpNeq     FilterOp = "neq"
	OpGte     FilterOp = "gte"
	OpLte     FilterOp = "lte"
	OpNull    FilterOp = "null"
	OpNotNull FilterOp = "not_null"
)

// Filter is a single predicate over a collection field.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

func Eq(field string, value any) Filter  { return Filter{Field: field, Op: OpEq, Value: value} }
func Neq(field string, value any) Filter { return Filter{Field: field, Op: OpNeq, Value: value} }
func Gte(field string, value any) Filter { return Filter{Field: field, Op: OpGte, Value: value} }
func Lte(field string, value any) Filter { return Filter{Field: field, Op: OpLte, Value: value} }
func IsNull(field string) Filter         { return Filter{Field: field, Op: OpNull} }

// Order is an ordering key for Find.
type Order struct {
	Field string
	Desc  bool
}

func (o Order) clause() string {
	if o.Desc {
		return o.Field + " DESC"
	}
	return o.Field + " ASC"
}

// Apply translates filters onto a gorm query.
func Apply(q *gorm.DB, filters []Filter) *gorm.DB {
	for _, f := range filters {
		switch f.Op {
		case OpEq:
			q = q.Where(f.Field+" = ?", f.Value)
		case OpNeq:
			q = q.Where(f.Field+" <> ?", f.Value)
		case OpGte:
			q = q.Where(f.Field+" >= ?", f.Value)
		case OpLte:
			q = q.Where(f.Field+" <= ?", f.Value)
		case OpNull:
			q = q.Where(f.Field + " IS NULL")
		case OpNotNull:
			q = q.Where(f.Field + " IS NOT NULL")
		}
	}
	return q
}

// Classify maps a raw persistence error onto the application taxonomy:
// duplicate-key and foreign-key failures become constraint violations,
// missing records become not-found, connectivity failures become transient.
func Classify(err error, domain string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(domain, "Record not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ConstraintViolation(err, domain, "Record already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.ConstraintViolation(err, domain, "Referenced record does not exist")
	case isTransient(err):
		return apperrors.TransientError(err, domain)
	default:
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, domain, "Database operation failed", 500)
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

const (
	retryAttempts = 3
	retryBase     = 100 * time.Millisecond
)

// withRetry re-runs fn on transient failures with doubling backoff. Other
// error kinds surface immediately.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	delay := retryBase
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = fn(); err == nil || !apperrors.IsRetryable(err) {
			return err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry interrupted: %w", ctx.Err())
		}
		delay *= 2
	}
	return err
}
