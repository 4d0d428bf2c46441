// Package wpstub is a deterministic stand-in for the WordPress theme
// demo deployment. It renders the same markers the real site exposes
// (login form, admin bar, plugin listing controls, theme front end and
// REST endpoints) so the suite's own tests run hermetic.
package wpstub

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	errorMessageMissingDataSourceName = "wpstub: missing database data source name"
	errorMessageOpenDatabase          = "wpstub: open sqlite database"
	errorMessageSeedDatabase          = "wpstub: seed database"
)

// ErrMissingDataSourceName indicates the sqlite data source name was omitted.
var ErrMissingDataSourceName = errors.New(errorMessageMissingDataSourceName)

var seedPosts = []Post{
	{
		Slug:    "welcome-to-aurora",
		Title:   "Welcome to Aurora",
		Content: "Aurora is a fast, accessible theme for content-first sites.",
	},
	{
		Slug:    "styling-the-shop",
		Title:   "Styling the Shop",
		Content: "The shop templates inherit the palette from the customizer settings.",
	},
	{
		Slug:    "release-notes",
		Title:   "Release Notes",
		Content: "This release tunes typography and the mobile navigation drawer.",
	},
}

var seedPlugins = []Plugin{
	{Slug: "elementor", Name: "Elementor", Active: true},
	{Slug: "hello-dolly", Name: "Hello Dolly", Active: false},
	{Slug: "aurora-companion", Name: "Aurora Companion", Active: true},
}

// OpenDatabase opens the stub's sqlite database and migrates its schema.
func OpenDatabase(dataSourceName string) (*gorm.DB, error) {
	if dataSourceName == "" {
		return nil, ErrMissingDataSourceName
	}

	database, openErr := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if openErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageOpenDatabase, openErr)
	}

	if migrateErr := database.AutoMigrate(&Post{}, &Comment{}, &Plugin{}); migrateErr != nil {
		return nil, migrateErr
	}

	return database, nil
}

// SeedDemoContent inserts the fixture posts and plugin records an empty
// database starts from. Seeding an already-populated database is a no-op.
func SeedDemoContent(database *gorm.DB) error {
	var existingPostCount int64
	if countErr := database.Model(&Post{}).Count(&existingPostCount).Error; countErr != nil {
		return fmt.Errorf("%s: %w", errorMessageSeedDatabase, countErr)
	}
	if existingPostCount > 0 {
		return nil
	}

	for _, seedPost := range seedPosts {
		insertedPost := seedPost
		insertedPost.ID = NewID()
		if insertErr := database.Create(&insertedPost).Error; insertErr != nil {
			return fmt.Errorf("%s: %w", errorMessageSeedDatabase, insertErr)
		}
	}

	for _, seedPlugin := range seedPlugins {
		insertedPlugin := seedPlugin
		if insertErr := database.Create(&insertedPlugin).Error; insertErr != nil {
			return fmt.Errorf("%s: %w", errorMessageSeedDatabase, insertErr)
		}
	}

	return nil
}

// NewID generates a new globally unique identifier.
func NewID() string {
	return uuid.NewString()
}
