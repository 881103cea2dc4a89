package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/cuedspeech/internal/landmark"
)

// Reference is the stored averaged hand shape for one configuration key.
type Reference struct {
	Key       string             `json:"key"`
	Tolerance float64            `json:"tolerance"`
	Samples   int                `json:"samples"`
	Landmarks []landmark.Point3D `json:"landmarks,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ReferenceRepository stores reference shapes.
type ReferenceRepository struct {
	db *sql.DB
}

// References returns the reference repository for this store.
func (s *Store) References() *ReferenceRepository {
	return &ReferenceRepository{db: s.db}
}

// Save inserts or replaces a reference and its landmarks in one transaction.
func (r *ReferenceRepository) Save(ref *Reference) error {
	ref.UpdatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO config_references (key, tolerance, samples, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET tolerance = excluded.tolerance,
		 samples = excluded.samples, updated_at = excluded.updated_at`,
		ref.Key, ref.Tolerance, ref.Samples, ref.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM reference_landmarks WHERE reference_key = ?`, ref.Key); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO reference_landmarks (reference_key, landmark_index, x, y, z) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range ref.Landmarks {
		if _, err := stmt.Exec(ref.Key, i, p.X, p.Y, p.Z); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Get retrieves a reference with its landmarks.
func (r *ReferenceRepository) Get(key string) (*Reference, error) {
	ref := &Reference{}
	err := r.db.QueryRow(
		`SELECT key, tolerance, samples, updated_at FROM config_references WHERE key = ?`, key,
	).Scan(&ref.Key, &ref.Tolerance, &ref.Samples, &ref.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ref.Landmarks, err = r.landmarks(key)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func (r *ReferenceRepository) landmarks(key string) ([]landmark.Point3D, error) {
	rows, err := r.db.Query(
		`SELECT x, y, z FROM reference_landmarks WHERE reference_key = ? ORDER BY landmark_index`, key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []landmark.Point3D
	for rows.Next() {
		var p landmark.Point3D
		if err := rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// List retrieves every reference with its landmarks, ordered by key.
func (r *ReferenceRepository) List() ([]*Reference, error) {
	rows, err := r.db.Query(`SELECT key, tolerance, samples, updated_at FROM config_references ORDER BY key`)
	if err != nil {
		return nil, err
	}

	var refs []*Reference
	for rows.Next() {
		ref := &Reference{}
		if err := rows.Scan(&ref.Key, &ref.Tolerance, &ref.Samples, &ref.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// The store runs on a single connection, so the cursor must be released
	// before loading landmarks.
	rows.Close()

	for _, ref := range refs {
		if ref.Landmarks, err = r.landmarks(ref.Key); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

// Delete removes a reference and its landmarks.
func (r *ReferenceRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM config_references WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
