package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore keeps every collection in a single documents table with a
// jsonb payload. Committed changes are published to Kafka so the read side
// stays in sync.
type PostgresStore struct {
	db        *sql.DB
	publisher ChangePublisher
}

func NewPostgresStore(db *sql.DB, publisher ChangePublisher) *PostgresStore {
	return &PostgresStore{db: db, publisher: publisher}
}

// ConnectPostgres opens and pings a PostgreSQL connection
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func (ps *PostgresStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	var raw []byte
	err := ps.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (ps *PostgresStore) Set(ctx context.Context, collection, id string, doc Document, merge bool) error {
	stored, err := ps.execSet(ctx, ps.db, collection, id, doc, merge)
	if err != nil {
		return err
	}
	return ps.publish(ctx, Change{
		Collection: collection, ID: id,
		Kind: ChangeSet, Doc: stored, Timestamp: time.Now(),
	})
}

func (ps *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	res, err := ps.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return ps.publish(ctx, Change{
		Collection: collection, ID: id,
		Kind: ChangeDelete, Timestamp: time.Now(),
	})
}

// Increment relies on a single UPSERT so concurrent writers cannot lose
// updates; a missing document or field counts as 0.
func (ps *PostgresStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	var raw []byte
	err := ps.db.QueryRowContext(ctx,
		`INSERT INTO documents (collection, id, data, updated_at)
		 VALUES ($1, $2, jsonb_build_object($3::text, $4::bigint), now())
		 ON CONFLICT (collection, id) DO UPDATE
		 SET data = jsonb_set(documents.data, ARRAY[$3::text],
		         to_jsonb(COALESCE((documents.data->>$3)::bigint, 0) + $4)),
		     updated_at = now()
		 RETURNING data`,
		collection, id, field, delta,
	).Scan(&raw)
	if err != nil {
		return err
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return ps.publish(ctx, Change{
		Collection: collection, ID: id,
		Kind: ChangeSet, Doc: doc, Timestamp: time.Now(),
	})
}

func (ps *PostgresStore) Query(ctx context.Context, q Query) ([]Document, error) {
	sqlQuery := `SELECT data FROM documents WHERE collection = $1`
	args := []any{q.Collection}

	for _, f := range q.Filters {
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		args = append(args, f.Field, string(value))
		sqlQuery += fmt.Sprintf(" AND data -> $%d = $%d::jsonb", len(args)-1, len(args))
	}

	if q.OrderBy != "" {
		args = append(args, q.OrderBy)
		direction := "ASC"
		if q.Descending {
			direction = "DESC"
		}
		sqlQuery += fmt.Sprintf(" ORDER BY data -> $%d %s", len(args), direction)
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sqlQuery += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := ps.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// RunBatch wraps all operations in one transaction.
func (ps *PostgresStore) RunBatch(ctx context.Context, ops []WriteOp) error {
	if len(ops) == 0 {
		return ErrEmptyBatch
	}

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	changes := make([]Change, 0, len(ops))
	now := time.Now()
	for _, op := range ops {
		switch op.Kind {
		case ChangeSet:
			stored, err := ps.execSet(ctx, tx, op.Collection, op.ID, op.Doc, op.Merge)
			if err != nil {
				tx.Rollback()
				return err
			}
			changes = append(changes, Change{
				Collection: op.Collection, ID: op.ID,
				Kind: ChangeSet, Doc: stored, Timestamp: now,
			})
		case ChangeDelete:
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM documents WHERE collection = $1 AND id = $2`,
				op.Collection, op.ID,
			); err != nil {
				tx.Rollback()
				return err
			}
			changes = append(changes, Change{
				Collection: op.Collection, ID: op.ID,
				Kind: ChangeDelete, Timestamp: now,
			})
		default:
			tx.Rollback()
			return fmt.Errorf("unknown batch op kind %q", op.Kind)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for _, c := range changes {
		if err := ps.publish(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (ps *PostgresStore) execSet(ctx context.Context, db execer, collection, id string, doc Document, merge bool) (Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	update := `SET data = EXCLUDED.data, updated_at = now()`
	if merge {
		update = `SET data = documents.data || EXCLUDED.data, updated_at = now()`
	}

	var storedRaw []byte
	err = db.QueryRowContext(ctx, strings.Join([]string{
		`INSERT INTO documents (collection, id, data, updated_at)`,
		`VALUES ($1, $2, $3::jsonb, now())`,
		`ON CONFLICT (collection, id) DO UPDATE`,
		update,
		`RETURNING data`,
	}, " "), collection, id, raw).Scan(&storedRaw)
	if err != nil {
		return nil, err
	}

	var stored Document
	if err := json.Unmarshal(storedRaw, &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func (ps *PostgresStore) publish(ctx context.Context, c Change) error {
	if ps.publisher == nil {
		return nil
	}
	return ps.publisher.Publish(ctx, c.Collection+"/"+c.ID, c)
}
