package repository

import (
	"context"
	"time"

	"build-route-api/internal/domain/entity"
	"build-route-api/internal/domain/repository"

	"gorm.io/gorm"
)

// GormReliabilityRepository implements the ReliabilityRepository interface
type GormReliabilityRepository struct {
	db *gorm.DB
}

// NewGormReliabilityRepository creates a new GORM reliability repository
func NewGormReliabilityRepository(db *gorm.DB) repository.ReliabilityRepository {
	return &GormReliabilityRepository{
		db: db,
	}
}

// AirlineReliabilityModel is the GORM model for database mapping
type AirlineReliabilityModel struct {
	ID             uint   `gorm:"primaryKey"`
	Code           string `gorm:"column:code;unique"`
	MinCount       int    `gorm:"column:min_count"`
	ExemptedCabins string `gorm:"column:exempted_cabins"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides the default table name
func (AirlineReliabilityModel) TableName() string {
	return "airline_reliability"
}

// GetAll loads the full reliability reference table
func (r *GormReliabilityRepository) GetAll(ctx context.Context) ([]entity.AirlineReliability, error) {
	var rows []AirlineReliabilityModel
	result := r.db.WithContext(ctx).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	// Convert GORM models to domain entities
	entries := make([]entity.AirlineReliability, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entity.AirlineReliability{
			Code:           row.Code,
			MinCount:       row.MinCount,
			ExemptedCabins: row.ExemptedCabins,
			UpdatedAt:      row.UpdatedAt,
		})
	}
	return entries, nil
}
