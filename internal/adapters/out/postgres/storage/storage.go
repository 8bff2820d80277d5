// Package storage holds what every gorm repository shares: write-conflict classification,
// the version-checked update and the aggregate tracker of the unit of work.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL error codes that can mean another transaction won the write.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"

	primaryKeySuffix = "_pkey"
)

// Tracker collects the aggregates written in a unit of work so their events can be
// published after commit.
type Tracker interface {
	Track(aggregate kernel.EventSource)
}

// Classify maps store errors caused by concurrent writers to errs.ErrConcurrentModification.
// A primary key clash is not one: the id was taken and retrying cannot free it, so it
// becomes a FailedPreconditionError. Other errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case IsPrimaryKeyViolation(err):
			return errs.NewFailedPreconditionErrorWithCause("identifier is already taken",
				fmt.Errorf("%s (%s)", pgErr.Message, pgErr.ConstraintName))
		case pgErr.Code == codeUniqueViolation,
			pgErr.Code == codeSerializationFailure,
			pgErr.Code == codeDeadlockDetected:
			return fmt.Errorf("%w: %s (%s)", errs.ErrConcurrentModification, pgErr.Message, pgErr.Code)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", errs.ErrConcurrentModification, err)
	}
	return err
}

// IsPrimaryKeyViolation reports a unique violation on a table's primary key. PostgreSQL
// names those constraints <table>_pkey.
func IsPrimaryKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == codeUniqueViolation &&
		strings.HasSuffix(pgErr.ConstraintName, primaryKeySuffix)
}

// Insert creates dto as the document kind with the given id. An id already stored fails
// permanently; clashes on any other unique index are write conflicts.
func Insert(ctx context.Context, db *gorm.DB, dto any, kind string, id any) error {
	err := db.WithContext(ctx).Create(dto).Error
	if IsPrimaryKeyViolation(err) {
		return errs.NewFailedPreconditionError("%s %v already exists", kind, id)
	}
	return Classify(err)
}

// InsertFirst creates the first row of a document keyed by another entity's id. Two first
// writers clash on the primary key, so here that clash is a write conflict.
func InsertFirst(ctx context.Context, db *gorm.DB, dto any) error {
	err := db.WithContext(ctx).Create(dto).Error
	if IsPrimaryKeyViolation(err) {
		return fmt.Errorf("%w: %w", errs.ErrConcurrentModification, err)
	}
	return Classify(err)
}

// UpdateVersioned overwrites the row of id only if it still holds version. dto must carry
// version+1. No matching row means the document changed since it was read.
func UpdateVersioned(ctx context.Context, db *gorm.DB, dto any, id any, version int) error {
	result := db.WithContext(ctx).
		Model(dto).
		Where("id = ? AND version = ?", id, version).
		Select("*").
		Updates(dto)
	if result.Error != nil {
		return Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %T %v is not at version %d", errs.ErrConcurrentModification, dto, id, version)
	}
	return nil
}

// NotFound wraps gorm.ErrRecordNotFound into an ObjectNotFoundError.
func NotFound(err error, kind string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError(kind, id)
	}
	return err
}
