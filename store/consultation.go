package store

import (
	"errors"

	"github.com/pillcare/pillcare-backend/model"
	"github.com/pillcare/pillcare-backend/util"
	"gorm.io/gorm"
)

// consultationHistoryLimit bounds the history listing to the most recent
// consultations shown on the app's home screen.
const consultationHistoryLimit = 2

// GetOrCreatePharmacy resolves a pharmacy by its (name, address) natural key,
// inserting it on first reference. The composite unique index on
// pharmacies(name, address) makes the insert race-safe: a concurrent
// duplicate insert fails and the loser re-reads the winner's row.
func GetOrCreatePharmacy(db *gorm.DB, name, address, phone string) (uint, error) {
	name = util.NormalizeName(name)
	address = util.NormalizeName(address)

	var pharmacy model.Pharmacy
	err := db.Where("name = ? AND address = ?", name, address).First(&pharmacy).Error
	if err == nil {
		return pharmacy.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, wrapPersist("get pharmacy", err)
	}

	pharmacy = model.Pharmacy{Name: name, Address: address, Phone: phone}
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&pharmacy).Error
	})
	if err != nil {
		// Lost the race against an identical insert; the row exists now.
		var existing model.Pharmacy
		if retryErr := db.Where("name = ? AND address = ?", name, address).First(&existing).Error; retryErr == nil {
			return existing.ID, nil
		}
		return 0, wrapPersist("create pharmacy", err)
	}
	return pharmacy.ID, nil
}

// ConsultationHistory returns the user's latest consultations joined with
// their pharmacy fields, newest first.
func ConsultationHistory(db *gorm.DB, userID uint) ([]model.ConsultationHistoryEntry, error) {
	var entries []model.ConsultationHistoryEntry
	err := db.Table("consultations").
		Select("consultations.*, pharmacies.name as pharmacy_name, pharmacies.address as pharmacy_address, pharmacies.phone as pharmacy_phone").
		Joins("JOIN pharmacies ON consultations.pharmacy_id = pharmacies.id").
		Where("consultations.user_id = ?", userID).
		Order("consultations.created_at DESC, consultations.id DESC").
		Limit(consultationHistoryLimit).
		Find(&entries).Error
	if err != nil {
		return nil, wrapPersist("consultation history", err)
	}
	return entries, nil
}

// GetConsultationByID fetches a single consultation by primary key.
func GetConsultationByID(db *gorm.DB, id uint) (*model.Consultation, error) {
	var consultation model.Consultation
	err := db.First(&consultation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapPersist("get consultation", err)
	}
	return &consultation, nil
}

// InsertConsultation resolves (or creates) the pharmacy from the request's
// pharmacy fields, then inserts the consultation row.
func InsertConsultation(db *gorm.DB, req model.ConsultationRequest) (uint, error) {
	pharmacyID, err := GetOrCreatePharmacy(db, req.PharmacyName, req.PharmacyAddress, req.PharmacyPhone)
	if err != nil {
		return 0, err
	}

	consultation := model.Consultation{
		UserID:     req.UserID,
		PharmacyID: pharmacyID,
		Status:     req.Status,
		History:    req.History,
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&consultation).Error
	}); err != nil {
		return 0, wrapPersist("insert consultation", err)
	}
	return consultation.ID, nil
}

// RequestConsultation inserts a consultation whose pharmacy_id is already
// known, skipping pharmacy resolution.
func RequestConsultation(db *gorm.DB, req model.ConsultationRequest) (uint, error) {
	consultation := model.Consultation{
		UserID:     req.UserID,
		PharmacyID: req.PharmacyID,
		Status:     req.Status,
		History:    req.History,
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&consultation).Error
	}); err != nil {
		return 0, wrapPersist("request consultation", err)
	}
	return consultation.ID, nil
}

// UpdateConsultation applies the request only when the incoming status is
// "receipt" or "complete". A disallowed status is reported as applied=false
// with a nil error; the row is left untouched.
func UpdateConsultation(db *gorm.DB, id uint, req model.ConsultationRequest) (bool, error) {
	if req.Status != model.ConsultationStatusReceipt && req.Status != model.ConsultationStatusComplete {
		return false, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Consultation{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":  req.Status,
			"history": req.History,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, wrapPersist("update consultation", err)
	}
	return true, nil
}

// DeleteConsultation removes a consultation by primary key. Ownership is not
// checked here; callers enforce it.
func DeleteConsultation(db *gorm.DB, id uint) error {
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&model.Consultation{}, id).Error
	}); err != nil {
		return wrapPersist("delete consultation", err)
	}
	return nil
}
