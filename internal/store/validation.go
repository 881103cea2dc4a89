package store

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Validation is one validated attempt. IDs are ULIDs, so they sort by time.
type Validation struct {
	ID           string    `json:"id"`
	SyllableID   *string   `json:"syllable_id"`
	SyllableText string    `json:"syllable_text"`
	Confidence   int       `json:"confidence"`
	Profile      string    `json:"profile"`
	Frames       int       `json:"frames"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

// SyllableStats aggregates validations for one syllable text.
type SyllableStats struct {
	SyllableText   string  `json:"syllable_text"`
	Count          int     `json:"count"`
	BestConfidence int     `json:"best_confidence"`
	AvgConfidence  float64 `json:"avg_confidence"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newULID(t time.Time) (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// ValidationRepository records and queries validation events.
type ValidationRepository struct {
	db *sql.DB
}

// Validations returns the validation repository for this store.
func (s *Store) Validations() *ValidationRepository {
	return &ValidationRepository{db: s.db}
}

// Record inserts a validation, assigning its ID and timestamp.
func (r *ValidationRepository) Record(v *Validation) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	id, err := newULID(v.CreatedAt)
	if err != nil {
		return err
	}
	v.ID = id

	_, err = r.db.Exec(
		`INSERT INTO validations (id, syllable_id, syllable_text, confidence, profile, frames, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, nullString(v.SyllableID), v.SyllableText, v.Confidence, v.Profile, v.Frames, v.Source, v.CreatedAt,
	)
	return err
}

// List returns the most recent validations first. An empty syllableID lists
// every syllable; limit <= 0 means no limit.
func (r *ValidationRepository) List(syllableID string, limit int) ([]*Validation, error) {
	query := `SELECT id, syllable_id, syllable_text, confidence, profile, frames, source, created_at
		FROM validations`
	var args []any
	if syllableID != "" {
		query += ` WHERE syllable_id = ?`
		args = append(args, syllableID)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Validation
	for rows.Next() {
		v := &Validation{}
		var syllableID sql.NullString
		if err := rows.Scan(&v.ID, &syllableID, &v.SyllableText, &v.Confidence, &v.Profile,
			&v.Frames, &v.Source, &v.CreatedAt); err != nil {
			return nil, err
		}
		v.SyllableID = stringPtr(syllableID)
		out = append(out, v)
	}

	return out, rows.Err()
}

// Stats aggregates validations per syllable text, most practiced first.
func (r *ValidationRepository) Stats() ([]SyllableStats, error) {
	rows, err := r.db.Query(
		`SELECT syllable_text, COUNT(*), MAX(confidence), AVG(confidence)
		 FROM validations GROUP BY syllable_text ORDER BY COUNT(*) DESC, syllable_text`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []SyllableStats
	for rows.Next() {
		var s SyllableStats
		if err := rows.Scan(&s.SyllableText, &s.Count, &s.BestConfidence, &s.AvgConfidence); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
