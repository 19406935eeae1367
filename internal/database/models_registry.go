package database

import "scribe/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.Category{},
	}
}
