package database

import "shortlink/internal/models"

// PersistentModels lists the models managed by AutoMigrate, parents first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.ShortURLGroup{},
		&models.ShortURLPair{},
	}
}
