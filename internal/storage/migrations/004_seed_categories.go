package migrations

import "gorm.io/gorm"

// migration004Up seeds the default issue categories
func migration004Up(db *gorm.DB) error {
	return db.Exec(`
        INSERT INTO issue_categories (name, description, icon, color) VALUES
            ('Roads & Transport', 'Potholes, broken signals, transit access', 'road', '#e74c3c'),
            ('Parks & Recreation', 'Playgrounds, green spaces, sports facilities', 'tree', '#27ae60'),
            ('Public Safety', 'Lighting, crossings, hazards', 'shield', '#f39c12'),
            ('Sanitation', 'Waste collection, illegal dumping, street cleaning', 'trash', '#8e44ad'),
            ('Utilities', 'Water, power, drainage', 'bolt', '#2980b9'),
            ('Other', 'Everything that does not fit another category', 'dots', '#7f8c8d')
        ON CONFLICT (name) DO NOTHING
    `).Error
}

// migration004Down removes the seeded categories
func migration004Down(db *gorm.DB) error {
	return db.Exec(`
        DELETE FROM issue_categories WHERE name IN (
            'Roads & Transport',
            'Parks & Recreation',
            'Public Safety',
            'Sanitation',
            'Utilities',
            'Other'
        )
    `).Error
}
