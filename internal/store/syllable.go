package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/cuedspeech/internal/lfpc"
)

// Syllable levels.
const (
	LevelBeginner = "beginner"
	LevelStandard = "standard"
)

// Syllable is a practice target stored in the database. A nil key or
// position means that part is not required.
type Syllable struct {
	ID                 string    `json:"id"`
	Text               string    `json:"text"`
	Consonne           *string   `json:"consonne"`
	Voyelle            *string   `json:"voyelle"`
	HandSignKey        *string   `json:"hand_sign_key"`
	HandPositionConfig *int      `json:"hand_position_config"`
	Description        string    `json:"description"`
	Level              string    `json:"level"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Target converts the row into the matcher's target descriptor.
func (s *Syllable) Target() *lfpc.TargetSyllable {
	return &lfpc.TargetSyllable{
		Text:               s.Text,
		Consonne:           s.Consonne,
		Voyelle:            s.Voyelle,
		HandSignKey:        s.HandSignKey,
		HandPositionConfig: s.HandPositionConfig,
		Description:        s.Description,
	}
}

// SyllableRepository provides CRUD operations for syllables.
type SyllableRepository struct {
	db *sql.DB
}

// Syllables returns the syllable repository for this store.
func (s *Store) Syllables() *SyllableRepository {
	return &SyllableRepository{db: s.db}
}

const syllableColumns = `id, text, consonne, voyelle, hand_sign_key, hand_position_config,
	description, level, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSyllable(row rowScanner) (*Syllable, error) {
	s := &Syllable{}
	var consonne, voyelle, key sql.NullString
	var position sql.NullInt64

	err := row.Scan(&s.ID, &s.Text, &consonne, &voyelle, &key, &position,
		&s.Description, &s.Level, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.Consonne = stringPtr(consonne)
	s.Voyelle = stringPtr(voyelle)
	s.HandSignKey = stringPtr(key)
	if position.Valid {
		p := int(position.Int64)
		s.HandPositionConfig = &p
	}
	return s, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// Create inserts a new syllable. An empty ID is replaced by a new UUID and an
// empty level defaults to standard.
func (r *SyllableRepository) Create(s *Syllable) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Level == "" {
		s.Level = LevelStandard
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO syllables (`+syllableColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Text, nullString(s.Consonne), nullString(s.Voyelle), nullString(s.HandSignKey),
		nullInt(s.HandPositionConfig), s.Description, s.Level, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// GetByID retrieves a syllable by its ID.
func (r *SyllableRepository) GetByID(id string) (*Syllable, error) {
	s, err := scanSyllable(r.db.QueryRow(
		`SELECT `+syllableColumns+` FROM syllables WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// GetByText retrieves a syllable by its text.
func (r *SyllableRepository) GetByText(text string) (*Syllable, error) {
	s, err := scanSyllable(r.db.QueryRow(
		`SELECT `+syllableColumns+` FROM syllables WHERE text = ?`, text,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// List retrieves all syllables, optionally filtered by level, ordered by text.
func (r *SyllableRepository) List(level string) ([]*Syllable, error) {
	query := `SELECT ` + syllableColumns + ` FROM syllables`
	var args []any
	if level != "" {
		query += ` WHERE level = ?`
		args = append(args, level)
	}
	query += ` ORDER BY text`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var syllables []*Syllable
	for rows.Next() {
		s, err := scanSyllable(rows)
		if err != nil {
			return nil, err
		}
		syllables = append(syllables, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return syllables, nil
}

// Update updates an existing syllable.
func (r *SyllableRepository) Update(s *Syllable) error {
	s.UpdatedAt = time.Now()
	if s.Level == "" {
		s.Level = LevelStandard
	}

	result, err := r.db.Exec(
		`UPDATE syllables SET text = ?, consonne = ?, voyelle = ?, hand_sign_key = ?,
		 hand_position_config = ?, description = ?, level = ?, updated_at = ?
		 WHERE id = ?`,
		s.Text, nullString(s.Consonne), nullString(s.Voyelle), nullString(s.HandSignKey),
		nullInt(s.HandPositionConfig), s.Description, s.Level, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes a syllable by its ID.
func (r *SyllableRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM syllables WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Count returns the number of stored syllables.
func (r *SyllableRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM syllables`).Scan(&n)
	return n, err
}
