package model

// Pharmacy is created lazily the first time a consultation references it.
// (name, address) is the natural key; the composite unique index backs the
// lookup-or-create path so concurrent identical inserts cannot produce
// duplicate rows.
type Pharmacy struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"size:255;not null;uniqueIndex:idx_pharmacies_name_address"`
	Address string `json:"address" gorm:"size:512;not null;uniqueIndex:idx_pharmacies_name_address"`
	Phone   string `json:"phone" gorm:"size:255"`
}
