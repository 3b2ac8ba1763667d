package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/niksmo/candle-shop/internal/core/port"
)

var _ port.Slot = (*SQLSlot)(nil)

// A SQLSlot stores values in the cart_slots table.
type SQLSlot struct {
	sqldb sqldb
}

func NewSQLSlot(sqldb sqldb) SQLSlot {
	return SQLSlot{sqldb}
}

func (s SQLSlot) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "SQLSlot.Get"

	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT value FROM cart_slots WHERE key = $1;`

	var v string
	err := s.sqldb.QueryRowContext(ctx, query, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return v, true, nil
}

func (s SQLSlot) Put(ctx context.Context, key, value string) error {
	const op = "SQLSlot.Put"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO cart_slots (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at;
	`

	if _, err := s.sqldb.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}
	return nil
}
