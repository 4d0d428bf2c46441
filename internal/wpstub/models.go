package wpstub

import "time"

// Post is one published article of the demo site.
type Post struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Slug      string    `gorm:"uniqueIndex;not null;size:200"`
	Title     string    `gorm:"not null;size:200"`
	Content   string    `gorm:"not null;size:8000"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Comment is a visitor comment attached to a post.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36"`
	PostID    string    `gorm:"index;not null;size:36"`
	Author    string    `gorm:"not null;size:200"`
	Content   string    `gorm:"not null;size:4000"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Plugin is one installed plugin row of the admin listing.
type Plugin struct {
	Slug      string    `gorm:"primaryKey;size:100"`
	Name      string    `gorm:"not null;size:200"`
	Active    bool      `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
