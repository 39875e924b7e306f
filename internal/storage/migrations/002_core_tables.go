package migrations

import "gorm.io/gorm"

// migration002Up creates the core tables
func migration002Up(db *gorm.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
            id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
            email VARCHAR(255) UNIQUE NOT NULL,
            password_hash VARCHAR(255) NOT NULL,
            first_name VARCHAR(100) NOT NULL,
            last_name VARCHAR(100) NOT NULL,
            display_name VARCHAR(200),
            bio TEXT,
            phone VARCHAR(50),
            address VARCHAR(500),
            city VARCHAR(100),
            state VARCHAR(100),
            zip_code VARCHAR(20),
            avatar_url VARCHAR(500),
            role VARCHAR(16) NOT NULL DEFAULT 'user',
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS issue_categories (
            id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
            name VARCHAR(100) UNIQUE NOT NULL,
            description TEXT,
            icon VARCHAR(100),
            color VARCHAR(20),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS civic_issues (
            id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
            title VARCHAR(255) NOT NULL,
            description TEXT NOT NULL,
            category_id UUID REFERENCES issue_categories(id) ON DELETE SET NULL,
            reporter_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            assignee_id UUID REFERENCES profiles(id) ON DELETE SET NULL,
            priority issue_priority NOT NULL DEFAULT 'medium',
            status issue_status NOT NULL DEFAULT 'open',
            location_address VARCHAR(500),
            latitude DECIMAL(10,7),
            longitude DECIMAL(10,7),
            image_urls TEXT[],
            is_anonymous BOOLEAN DEFAULT FALSE,
            admin_notes TEXT,
            view_count INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS issue_votes (
            id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
            issue_id UUID NOT NULL REFERENCES civic_issues(id) ON DELETE CASCADE,
            user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            vote_type vote_type NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS issue_comments (
            id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
            issue_id UUID NOT NULL REFERENCES civic_issues(id) ON DELETE CASCADE,
            user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            content TEXT NOT NULL,
            parent_comment_id UUID REFERENCES issue_comments(id) ON DELETE SET NULL,
            is_official BOOLEAN DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS issue_updates (
            id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
            issue_id UUID NOT NULL REFERENCES civic_issues(id) ON DELETE CASCADE,
            updated_by UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            update_type VARCHAR(50) NOT NULL DEFAULT 'status_change',
            old_value VARCHAR(50),
            new_value VARCHAR(50),
            message TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS community_events (
            id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
            title VARCHAR(255) NOT NULL,
            description TEXT,
            organizer_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            event_date TIMESTAMP WITH TIME ZONE NOT NULL,
            location_address VARCHAR(500),
            latitude DECIMAL(10,7),
            longitude DECIMAL(10,7),
            max_attendees INTEGER,
            is_public BOOLEAN NOT NULL DEFAULT TRUE,
            image_url VARCHAR(500),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS event_attendees (
            id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
            event_id UUID NOT NULL REFERENCES community_events(id) ON DELETE CASCADE,
            user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            status attendance_status NOT NULL DEFAULT 'attending',
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
            user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            title VARCHAR(255) NOT NULL,
            message TEXT NOT NULL,
            type VARCHAR(50) NOT NULL,
            related_id UUID,
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}

// migration002Down drops the core tables in reverse dependency order
func migration002Down(db *gorm.DB) error {
	tables := []string{
		"notifications",
		"event_attendees",
		"community_events",
		"issue_updates",
		"issue_comments",
		"issue_votes",
		"civic_issues",
		"issue_categories",
		"profiles",
	}

	for _, table := range tables {
		if err := db.Exec("DROP TABLE IF EXISTS " + table + " CASCADE").Error; err != nil {
			return err
		}
	}

	return nil
}
