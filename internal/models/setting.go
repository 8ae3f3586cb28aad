package models

import (
	"time"

	"gorm.io/datatypes"
)

// SettingMainTitle is the key of the site headline setting.
const SettingMainTitle = "main_title"

// Setting is an opaque key/value row.
type Setting struct {
	Key       string         `json:"key" gorm:"primaryKey"`
	Value     datatypes.JSON `json:"value" gorm:"not null"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName returns the database table name for the Setting model.
func (Setting) TableName() string {
	return "settings"
}

// SettingValue is the single-column projection of a setting row.
type SettingValue struct {
	Value datatypes.JSON `json:"value"`
}
