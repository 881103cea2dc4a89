package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Syllables table - target content for practice
		`CREATE TABLE IF NOT EXISTS syllables (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL UNIQUE,
			consonne TEXT,
			voyelle TEXT,
			hand_sign_key TEXT,
			hand_position_config INTEGER CHECK(hand_position_config BETWEEN 1 AND 5),
			description TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT 'standard' CHECK(level IN ('beginner', 'standard')),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Reference shapes - one averaged hand shape per configuration key
		`CREATE TABLE IF NOT EXISTS config_references (
			key TEXT PRIMARY KEY,
			tolerance REAL NOT NULL DEFAULT 4.0,
			samples INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS reference_landmarks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reference_key TEXT NOT NULL REFERENCES config_references(key) ON DELETE CASCADE,
			landmark_index INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL
		)`,

		// Raw recorded samples used to train references
		`CREATE TABLE IF NOT EXISTS reference_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reference_key TEXT NOT NULL,
			sample_index INTEGER NOT NULL,
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Validation events - one row per validated attempt
		`CREATE TABLE IF NOT EXISTS validations (
			id TEXT PRIMARY KEY,
			syllable_id TEXT REFERENCES syllables(id) ON DELETE SET NULL,
			syllable_text TEXT NOT NULL,
			confidence INTEGER NOT NULL,
			profile TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			source TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Hook bindings - which hook runs on which event
		`CREATE TABLE IF NOT EXISTS hook_bindings (
			id TEXT PRIMARY KEY,
			hook_name TEXT NOT NULL,
			event TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_reference_landmarks_key ON reference_landmarks(reference_key)`,
		`CREATE INDEX IF NOT EXISTS idx_reference_samples_key ON reference_samples(reference_key)`,
		`CREATE INDEX IF NOT EXISTS idx_validations_syllable_id ON validations(syllable_id)`,
		`CREATE INDEX IF NOT EXISTS idx_hook_bindings_event ON hook_bindings(event)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
