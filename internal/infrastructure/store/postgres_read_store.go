package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/homemade-market/internal/readmodel"
)

// PostgresReadStore persists read models in a read_models table with a
// jsonb payload, decoded back into their typed models by collection.
type PostgresReadStore struct {
	db       *sql.DB
	decoders map[string]func() any
}

func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{
		db: db,
		decoders: map[string]func() any{
			"shops":        func() any { return &readmodel.ShopReadModel{} },
			"products":     func() any { return &readmodel.ProductReadModel{} },
			"carts":        func() any { return &readmodel.CartReadModel{} },
			"orders":       func() any { return &readmodel.OrderReadModel{} },
			"seller_stats": func() any { return &readmodel.SellerStatsReadModel{} },
			"users":        func() any { return &readmodel.UserReadModel{} },
			"sessions":     func() any { return &readmodel.SessionReadModel{} },
		},
	}
}

func (rs *PostgresReadStore) Set(collection, id string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = rs.db.Exec(
		`INSERT INTO read_models (collection, id, data, updated_at)
		 VALUES ($1, $2, $3::jsonb, now())
		 ON CONFLICT (collection, id) DO UPDATE
		 SET data = EXCLUDED.data, updated_at = now()`,
		collection, id, raw,
	)
	return err
}

func (rs *PostgresReadStore) Get(collection, id string) (any, bool, error) {
	var raw []byte
	err := rs.db.QueryRow(
		`SELECT data FROM read_models WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	model, err := rs.decode(collection, raw)
	if err != nil {
		return nil, false, err
	}
	return model, true, nil
}

func (rs *PostgresReadStore) GetAll(collection string) ([]any, error) {
	rows, err := rs.db.Query(
		`SELECT data FROM read_models WHERE collection = $1`,
		collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		model, err := rs.decode(collection, raw)
		if err != nil {
			return nil, err
		}
		items = append(items, model)
	}
	return items, rows.Err()
}

func (rs *PostgresReadStore) Delete(collection, id string) error {
	_, err := rs.db.Exec(
		`DELETE FROM read_models WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	return err
}

// Update runs read-modify-write inside a transaction with the row locked,
// so concurrent projector instances cannot clobber each other.
func (rs *PostgresReadStore) Update(collection, id string, updateFn func(current any) any) (bool, error) {
	tx, err := rs.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var raw []byte
	err = tx.QueryRow(
		`SELECT data FROM read_models WHERE collection = $1 AND id = $2 FOR UPDATE`,
		collection, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	model, err := rs.decode(collection, raw)
	if err != nil {
		return false, err
	}

	updated, err := json.Marshal(updateFn(model))
	if err != nil {
		return false, err
	}
	if _, err := tx.Exec(
		`UPDATE read_models SET data = $3::jsonb, updated_at = now()
		 WHERE collection = $1 AND id = $2`,
		collection, id, updated,
	); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (rs *PostgresReadStore) decode(collection string, raw []byte) (any, error) {
	newModel, ok := rs.decoders[collection]
	if !ok {
		return nil, fmt.Errorf("no read model registered for collection %q", collection)
	}
	model := newModel()
	if err := json.Unmarshal(raw, model); err != nil {
		return nil, err
	}
	return model, nil
}
