package app

import (
	"github.com/voxeldragons/siteapi/internal/models"
	"gorm.io/gorm"
)

// HasAdminInitialized reports whether at least one admin user exists.
func HasAdminInitialized(conn *gorm.DB) (bool, error) {
	if conn == nil {
		return false, nil
	}
	var count int64
	if err := conn.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
