package store

import (
	"errors"
	"time"

	"github.com/pillcare/pillcare-backend/model"
	"gorm.io/gorm"
)

// Timestamps in the record listing are rendered in the app's home timezone.
var recordListLocation = mustLoadLocation("Asia/Seoul")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CreateRecord inserts a record row for an uploaded image and returns the
// new identifier. A zero identifier after a successful insert is treated as
// a persistence failure since everything downstream keys off it.
func CreateRecord(db *gorm.DB, userID uint, originalImagePath string) (uint, error) {
	record := model.Record{
		UserID:            userID,
		OriginalImagePath: originalImagePath,
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	}); err != nil {
		return 0, wrapPersist("create record", err)
	}
	if record.ID == 0 {
		return 0, wrapPersist("create record", errors.New("no record id returned after insert"))
	}
	return record.ID, nil
}

// InsertRecordDetails writes one detail row per matched detection as a
// single transactional unit; a failure rolls back every row of the batch.
func InsertRecordDetails(db *gorm.DB, details []model.RecordDetail) error {
	if len(details) == 0 {
		return nil
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&details).Error
	}); err != nil {
		return wrapPersist("insert record details", err)
	}
	return nil
}

// RecordsWithDetails returns all of a user's records newest first, each with
// its detail rows joined against the pill reference table.
func RecordsWithDetails(db *gorm.DB, userID uint) ([]model.RecordRead, error) {
	var records []model.Record
	err := db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&records).Error
	if err != nil {
		return nil, wrapPersist("list records", err)
	}

	result := make([]model.RecordRead, 0, len(records))
	for _, record := range records {
		var details []model.RecordPillDetail
		err := db.Table("record_details").
			Select("record_details.pill_id, record_details.pill_count, pills.drug_name as pill_name, pills.dosage, pills.effect").
			Joins("JOIN pills ON record_details.pill_id = pills.id").
			Where("record_details.record_id = ?", record.ID).
			Find(&details).Error
		if err != nil {
			return nil, wrapPersist("list record details", err)
		}

		result = append(result, model.RecordRead{
			ID:                record.ID,
			UserID:            record.UserID,
			OriginalImagePath: record.OriginalImagePath,
			CreatedAt:         record.CreatedAt.In(recordListLocation).Format(time.RFC3339),
			Details:           details,
		})
	}
	return result, nil
}

// DeleteRecord removes a record and its detail rows in one transaction.
// Returns false when no record with that id existed.
func DeleteRecord(db *gorm.DB, recordID uint) (bool, error) {
	var deleted bool
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", recordID).Delete(&model.RecordDetail{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Record{}, recordID)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, wrapPersist("delete record", err)
	}
	return deleted, nil
}

// DeleteRecordPill removes the detail rows for one pill inside one record.
// Returns false when nothing matched.
func DeleteRecordPill(db *gorm.DB, recordID, pillID uint) (bool, error) {
	var deleted bool
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("record_id = ? AND pill_id = ?", recordID, pillID).Delete(&model.RecordDetail{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, wrapPersist("delete record pill", err)
	}
	return deleted, nil
}
