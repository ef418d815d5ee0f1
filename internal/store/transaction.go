// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
)

const (
	maxTransactionAttempts = 3
	retryBackoff           = 20 * time.Millisecond
)

type txCtxKey struct{}

// WithinTransaction runs fn inside a database transaction. Repositories
// called with the context passed to fn take part in that transaction.
//
// The transaction commits when fn returns nil and rolls back otherwise.
// Attempts failing with a [Retryable] driver error (serialization failure,
// deadlock, SQLite busy) are retried up to three times in total. A call
// made while a transaction is already open simply joins it.
func (db *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txCtxKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	log := logger.FromContext(ctx)

	var err error
	for attempt := 1; attempt <= maxTransactionAttempts; attempt++ {
		err = db.runInTransaction(ctx, fn)
		if err == nil || db.errorClassificator.Classify(err) != Retryable {
			return err
		}

		log.Warn().Err(err).
			Str("func", "DB.WithinTransaction").
			Int("attempt", attempt).
			Msg("retrying transaction")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}

	return err
}

func (db *DB) runInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if err = fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}
