package migrations

import "gorm.io/gorm"

// migration003Up creates indexes. The two unique indexes back the
// one-vote-per-user and one-attendance-per-user invariants.
func migration003Up(db *gorm.DB) error {
	statements := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_issue_votes_issue_user ON issue_votes(issue_id, user_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_event_attendees_event_user ON event_attendees(event_id, user_id)",

		"CREATE INDEX IF NOT EXISTS idx_civic_issues_status ON civic_issues(status)",
		"CREATE INDEX IF NOT EXISTS idx_civic_issues_priority ON civic_issues(priority)",
		"CREATE INDEX IF NOT EXISTS idx_civic_issues_category ON civic_issues(category_id)",
		"CREATE INDEX IF NOT EXISTS idx_civic_issues_reporter ON civic_issues(reporter_id)",
		"CREATE INDEX IF NOT EXISTS idx_civic_issues_created_at ON civic_issues(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_issue_comments_issue ON issue_comments(issue_id)",
		"CREATE INDEX IF NOT EXISTS idx_issue_updates_issue ON issue_updates(issue_id)",

		"CREATE INDEX IF NOT EXISTS idx_community_events_date ON community_events(event_date)",
		"CREATE INDEX IF NOT EXISTS idx_community_events_organizer ON community_events(organizer_id)",

		"CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE is_read = FALSE",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}

// migration003Down drops the indexes
func migration003Down(db *gorm.DB) error {
	indexes := []string{
		"idx_notifications_user_unread",
		"idx_notifications_user",
		"idx_community_events_organizer",
		"idx_community_events_date",
		"idx_issue_updates_issue",
		"idx_issue_comments_issue",
		"idx_civic_issues_created_at",
		"idx_civic_issues_reporter",
		"idx_civic_issues_category",
		"idx_civic_issues_priority",
		"idx_civic_issues_status",
		"idx_event_attendees_event_user",
		"idx_issue_votes_issue_user",
	}

	for _, index := range indexes {
		if err := db.Exec("DROP INDEX IF EXISTS " + index).Error; err != nil {
			return err
		}
	}

	return nil
}
