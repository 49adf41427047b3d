package store

import (
	"errors"

	"github.com/pillcare/pillcare-backend/model"
	"gorm.io/gorm"
)

// GetUserByKakaoID looks a user up by the identity-provider subject.
func GetUserByKakaoID(db *gorm.DB, kakaoID string) (*model.User, error) {
	var user model.User
	err := db.Where("kakao_id = ?", kakaoID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapPersist("get user", err)
	}
	return &user, nil
}

// GetOrCreateUser returns the user for the given subject, creating the row
// on first login. Profile fields from the provider may be empty.
func GetOrCreateUser(db *gorm.DB, kakaoID, nickname, profileImageURL string) (*model.User, error) {
	user, err := GetUserByKakaoID(db, kakaoID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created := model.User{
		KakaoID:         kakaoID,
		Nickname:        nickname,
		ProfileImageURL: profileImageURL,
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&created).Error
	}); err != nil {
		return nil, wrapPersist("create user", err)
	}
	return &created, nil
}
