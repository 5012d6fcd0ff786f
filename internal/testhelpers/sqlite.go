package testhelpers

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The recipes table carries a pgvector column, which AutoMigrate cannot
// express on SQLite, so the test schema is created by hand.
var sqliteSchema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		password_hash TEXT NOT NULL
	);`,
	`CREATE TABLE subscriptions (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		user_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		UNIQUE(user_id, author_id)
	);`,
	`CREATE TABLE tags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE
	);`,
	`CREATE TABLE ingredients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		measurement_unit TEXT NOT NULL
	);`,
	`CREATE TABLE recipes (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		name TEXT NOT NULL,
		image TEXT NOT NULL,
		text TEXT NOT NULL,
		cooking_time INTEGER NOT NULL,
		author_id TEXT NOT NULL,
		embedding TEXT
	);`,
	`CREATE TABLE recipe_tags (
		recipe_id TEXT NOT NULL,
		tag_id TEXT NOT NULL,
		PRIMARY KEY (recipe_id, tag_id)
	);`,
	`CREATE TABLE recipe_ingredients (
		id TEXT PRIMARY KEY,
		recipe_id TEXT NOT NULL,
		ingredient_id TEXT NOT NULL,
		amount INTEGER NOT NULL
	);`,
	`CREATE TABLE favorites (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		user_id TEXT NOT NULL,
		recipe_id TEXT NOT NULL,
		UNIQUE(user_id, recipe_id)
	);`,
	`CREATE TABLE shopping_carts (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		user_id TEXT NOT NULL,
		recipe_id TEXT NOT NULL,
		UNIQUE(user_id, recipe_id)
	);`,
}

// SetupSQLiteDB creates an in-memory database with the full schema. Suited
// to unit tests that don't need postgres semantics.
func SetupSQLiteDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	for _, stmt := range sqliteSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}
	return db
}
