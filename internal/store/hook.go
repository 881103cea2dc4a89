package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// HookBinding subscribes a hook to an engine event.
type HookBinding struct {
	ID        string          `json:"id"`
	HookName  string          `json:"hook_name"`
	Event     string          `json:"event"`
	Config    json.RawMessage `json:"config"`
	Enabled   bool            `json:"enabled"`
	CreatedAt time.Time       `json:"created_at"`
}

// HookBindingRepository provides CRUD operations for hook bindings.
type HookBindingRepository struct {
	db *sql.DB
}

// HookBindings returns the hook binding repository for this store.
func (s *Store) HookBindings() *HookBindingRepository {
	return &HookBindingRepository{db: s.db}
}

const hookColumns = `id, hook_name, event, config, enabled, created_at`

func scanHookBinding(row rowScanner) (*HookBinding, error) {
	b := &HookBinding{}
	var config string
	var enabled int
	if err := row.Scan(&b.ID, &b.HookName, &b.Event, &config, &enabled, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Config = json.RawMessage(config)
	b.Enabled = enabled != 0
	return b, nil
}

func configOrEmpty(c json.RawMessage) string {
	if len(c) == 0 {
		return "{}"
	}
	return string(c)
}

// Create inserts a new binding. An empty ID is replaced by a new UUID.
func (r *HookBindingRepository) Create(b *HookBinding) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO hook_bindings (`+hookColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.HookName, b.Event, configOrEmpty(b.Config), b.Enabled, b.CreatedAt,
	)
	return err
}

// GetByID retrieves a binding by its ID.
func (r *HookBindingRepository) GetByID(id string) (*HookBinding, error) {
	b, err := scanHookBinding(r.db.QueryRow(`SELECT `+hookColumns+` FROM hook_bindings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// ListByEvent retrieves the enabled bindings for an event.
func (r *HookBindingRepository) ListByEvent(event string) ([]*HookBinding, error) {
	return r.query(`SELECT `+hookColumns+` FROM hook_bindings WHERE event = ? AND enabled = 1 ORDER BY created_at`, event)
}

// List retrieves all bindings.
func (r *HookBindingRepository) List() ([]*HookBinding, error) {
	return r.query(`SELECT ` + hookColumns + ` FROM hook_bindings ORDER BY created_at DESC`)
}

func (r *HookBindingRepository) query(query string, args ...any) ([]*HookBinding, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*HookBinding
	for rows.Next() {
		b, err := scanHookBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}

// Update updates an existing binding.
func (r *HookBindingRepository) Update(b *HookBinding) error {
	enabled := 0
	if b.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE hook_bindings SET hook_name = ?, event = ?, config = ?, enabled = ? WHERE id = ?`,
		b.HookName, b.Event, configOrEmpty(b.Config), enabled, b.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes a binding by its ID.
func (r *HookBindingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM hook_bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
