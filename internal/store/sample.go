package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Sample is a raw recorded reference sample.
type Sample struct {
	ID           int64           `json:"id"`
	ReferenceKey string          `json:"reference_key"`
	SampleIndex  int             `json:"sample_index"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SampleRepository provides operations on recorded samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Append adds samples for a key after any already recorded, in a single
// transaction. It returns the total sample count for the key.
func (r *SampleRepository) Append(key string, samples []json.RawMessage) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRow(
		`SELECT COALESCE(MAX(sample_index) + 1, 0) FROM reference_samples WHERE reference_key = ?`, key,
	).Scan(&next); err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO reference_samples (reference_key, sample_index, data, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	for i, data := range samples {
		if _, err := stmt.Exec(key, next+i, string(data), now); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return next + len(samples), nil
}

// GetByKey retrieves all samples for a key in recording order.
func (r *SampleRepository) GetByKey(key string) ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT id, reference_key, sample_index, data, created_at
		 FROM reference_samples
		 WHERE reference_key = ?
		 ORDER BY sample_index`,
		key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var data string
		if err := rows.Scan(&s.ID, &s.ReferenceKey, &s.SampleIndex, &data, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Data = json.RawMessage(data)
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// DeleteByKey removes all samples for a key.
func (r *SampleRepository) DeleteByKey(key string) error {
	_, err := r.db.Exec(`DELETE FROM reference_samples WHERE reference_key = ?`, key)
	return err
}
