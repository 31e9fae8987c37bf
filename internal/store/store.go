package store

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/postgres"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements the rental store contracts on Postgres. Methods join the
// transaction carried by ctx when called inside TxManager.WithTx.
type Store struct{ DB *pgxpool.Pool }

var (
	_ rental.ItemStore         = (*Store)(nil)
	_ rental.Ledger            = (*Store)(nil)
	_ rental.CustomerDirectory = (*Store)(nil)
	_ rental.CategoryStore     = (*Store)(nil)
	_ rental.FeedbackStore     = (*Store)(nil)
	_ rental.InquiryStore      = (*Store)(nil)
	_ rental.StatsStore        = (*Store)(nil)
	_ rental.AdminStore        = (*Store)(nil)
)

func (s *Store) q(ctx context.Context) postgres.Querier { return postgres.Conn(ctx, s.DB) }

// mapErr translates pgx/Postgres errors into the rental error taxonomy.
func mapErr(err error, what string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s %v", rental.ErrNotFound, what, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.CheckViolation, pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation,
			pgerrcode.NotNullViolation, pgerrcode.RestrictViolation:
			return fmt.Errorf("%w: %s (%s)", rental.ErrConstraintViolation, pgErr.ConstraintName, pgErr.Message)
		}
	}
	return err
}

func expectOne(tag pgconn.CommandTag, what string, id any) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %v", rental.ErrNotFound, what, id)
	}
	return nil
}
