package models

// TaskAssignment links a task to an assigned user. UserID is a weak
// reference: the user may have been removed, and resolution happens at
// read time.
type TaskAssignment struct {
	ID       uint64 `gorm:"primarykey" json:"-"`
	TaskID   uint64 `gorm:"index;not null" json:"task_id"`
	UserID   uint64 `gorm:"index;not null" json:"user_id"`
	Position int    `gorm:"not null" json:"-"`
}
