package migrations

import "gorm.io/gorm"

// migration001Up creates extensions and custom types
func migration001Up(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return err
	}

	if err := db.Exec(`
        CREATE TYPE issue_status AS ENUM (
            'open',
            'in_progress',
            'resolved',
            'closed'
        )
    `).Error; err != nil {
		return err
	}

	if err := db.Exec(`
        CREATE TYPE issue_priority AS ENUM (
            'low',
            'medium',
            'high',
            'urgent'
        )
    `).Error; err != nil {
		return err
	}

	if err := db.Exec(`
        CREATE TYPE vote_type AS ENUM (
            'up',
            'down'
        )
    `).Error; err != nil {
		return err
	}

	if err := db.Exec(`
        CREATE TYPE attendance_status AS ENUM (
            'attending',
            'maybe',
            'not_attending'
        )
    `).Error; err != nil {
		return err
	}

	return nil
}

// migration001Down drops the custom types
func migration001Down(db *gorm.DB) error {
	for _, typeName := range []string{"attendance_status", "vote_type", "issue_priority", "issue_status"} {
		if err := db.Exec("DROP TYPE IF EXISTS " + typeName + " CASCADE").Error; err != nil {
			return err
		}
	}

	// NOTE: We don't drop the UUID extension as it might be used by other applications
	return nil
}
