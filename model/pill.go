package model

// Pill is the pharmaceutical reference table, populated out-of-band.
// Detection labels are resolved against DrugName by exact match; the detail
// endpoint looks rows up by DrugCode.
type Pill struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	DrugCode string `json:"drug_code" gorm:"size:255;not null;index"`
	DrugName string `json:"drug_name" gorm:"size:255;not null;index"`
	Dosage   string `json:"dosage" gorm:"size:255;not null"`
	Effect   string `json:"effect" gorm:"size:255;not null"`
	Caution  string `json:"caution" gorm:"size:255;not null"`
}
