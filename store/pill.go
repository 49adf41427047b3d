package store

import (
	"errors"

	"github.com/pillcare/pillcare-backend/model"
	"gorm.io/gorm"
)

// FindPillByName resolves a detection label against the pill reference table
// by exact drug-name match.
func FindPillByName(db *gorm.DB, drugName string) (*model.Pill, error) {
	var pill model.Pill
	err := db.Where("drug_name = ?", drugName).First(&pill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapPersist("find pill by name", err)
	}
	return &pill, nil
}

// FindPillByCode looks a pill up by its drug code.
func FindPillByCode(db *gorm.DB, drugCode string) (*model.Pill, error) {
	var pill model.Pill
	err := db.Where("drug_code = ?", drugCode).First(&pill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapPersist("find pill by code", err)
	}
	return &pill, nil
}
