package repository

import (
	"database/sql"
	"fmt"

	"kidslearning/internal/database"
)

// KeyValueRepository stores string documents by key in the kv_store table
type KeyValueRepository struct {
	db database.DBTX
}

func NewKeyValueRepository(db database.DBTX) *KeyValueRepository {
	return &KeyValueRepository{db: db}
}

// Get retrieves a value by key; found is false when the key is absent
func (r *KeyValueRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT store_value FROM kv_store WHERE store_key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

// Set updates or inserts a value
func (r *KeyValueRepository) Set(key, value string) error {
	if _, err := r.db.Exec(r.db.GetDialect().UpsertKeyValue(), key, value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Remove deletes a key; removing an absent key is not an error
func (r *KeyValueRepository) Remove(key string) error {
	if _, err := r.db.Exec("DELETE FROM kv_store WHERE store_key = ?", key); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}
