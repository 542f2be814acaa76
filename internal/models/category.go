package models

// Category groups transactions and envelopes. ParentID forms a tree.
type Category struct {
	Base
	UserID    string  `gorm:"type:uuid;not null;index" json:"user_id"`
	ParentID  *string `gorm:"type:uuid;index" json:"parent_id"`
	Name      string  `gorm:"size:100;not null" json:"name"`
	Color     string  `gorm:"size:7" json:"color"`
	Icon      string  `gorm:"size:50" json:"icon"`
	IsDefault bool    `gorm:"default:false" json:"is_default"`
	SortOrder int     `gorm:"default:0" json:"sort_order"`
}
