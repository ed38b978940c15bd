package backends

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type (
	// PoolOps is the subset of pgxpool.Pool used by the backend.
	PoolOps interface {
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
		Begin(ctx context.Context) (pgx.Tx, error)
		Ping(ctx context.Context) error
	}

	// PostgresBackend stores one row per record; position keeps list order.
	PostgresBackend struct {
		pool    PoolOps
		scanner Scanner
		table   string
		logger  logger.Logger
	}

	recordRow struct {
		ID     string `db:"id"`
		Name   string `db:"name"`
		Status string `db:"status"`
	}
)

func NewPostgresBackend(pool PoolOps, scanner Scanner, table string, log logger.Logger) *PostgresBackend {
	return &PostgresBackend{
		pool:    pool,
		scanner: scanner,
		table:   pgx.Identifier{table}.Sanitize(),
		logger:  log.Component("postgres-backend"),
	}
}

func (b *PostgresBackend) Name() string {
	return "postgres"
}

// EnsureSchema creates the records table when it does not exist yet.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	position INTEGER NOT NULL
)`, b.table)

	if _, err := b.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", b.table, err)
	}

	return nil
}

func (b *PostgresBackend) Load(ctx context.Context) (model.List, error) {
	query, args, err := psql.Select("id", "name", "status").
		From(b.table).
		OrderBy("position", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []recordRow
	if err := b.scanner.ScanAll(&records, rows); err != nil {
		return nil, fmt.Errorf("failed to scan records: %w", err)
	}

	list := make(model.List, 0, len(records))

	for _, row := range records {
		status, err := model.ParseStatus(row.Status)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", row.ID, err)
		}

		list = append(list, model.Record{ID: row.ID, Name: row.Name, Status: status})
	}

	return list, nil
}

// Replace swaps the table contents inside one transaction.
func (b *PostgresBackend) Replace(ctx context.Context, list model.List) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := b.replaceInTx(ctx, tx, list); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			b.logger.Warn().Err(rbErr).Msg("failed to roll back replace")
		}

		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}

	return nil
}

func (b *PostgresBackend) replaceInTx(ctx context.Context, tx pgx.Tx, list model.List) error {
	deleteQuery, deleteArgs, err := psql.Delete(b.table).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := tx.Exec(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	if len(list) == 0 {
		return nil
	}

	insert := psql.Insert(b.table).Columns("id", "name", "status", "position")
	for position, record := range list {
		insert = insert.Values(record.ID, record.Name, record.Status.String(), position)
	}

	insertQuery, insertArgs, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := tx.Exec(ctx, insertQuery, insertArgs...); err != nil {
		return b.translateWriteError(err, "")
	}

	return nil
}

func (b *PostgresBackend) InsertRecord(ctx context.Context, record model.Record) error {
	nextPosition := sq.Expr(fmt.Sprintf("(SELECT COALESCE(MAX(position), -1) + 1 FROM %s)", b.table))

	query, args, err := psql.Insert(b.table).
		Columns("id", "name", "status", "position").
		Values(record.ID, record.Name, record.Status.String(), nextPosition).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := b.pool.Exec(ctx, query, args...); err != nil {
		return b.translateWriteError(err, record.ID)
	}

	return nil
}

func (b *PostgresBackend) UpdateRecord(ctx context.Context, previousID string, record model.Record) error {
	query, args, err := psql.Update(b.table).
		Set("id", record.ID).
		Set("name", record.Name).
		Set("status", record.Status.String()).
		Where(sq.Eq{"id": previousID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := b.pool.Exec(ctx, query, args...)
	if err != nil {
		return b.translateWriteError(err, record.ID)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s no longer exists", previousID)
	}

	return nil
}

func (b *PostgresBackend) DeleteRecord(ctx context.Context, id string) error {
	query, args, err := psql.Delete(b.table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := b.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s no longer exists", id)
	}

	return nil
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

func (b *PostgresBackend) translateWriteError(err error, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("postgres: %w", model.NewDuplicateIDError(id))
	}

	return fmt.Errorf("failed to write records: %w", err)
}
