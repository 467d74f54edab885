package models

// ChecklistItem is one sub-step of a task's todo checklist.
type ChecklistItem struct {
	ID        uint64 `gorm:"primarykey" json:"-"`
	TaskID    uint64 `gorm:"index;not null" json:"-"`
	Text      string `gorm:"type:text" json:"text"`
	Completed bool   `gorm:"not null;default:false" json:"completed"`
	Position  int    `gorm:"not null" json:"-"`
}
