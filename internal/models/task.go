package models

import "time"

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Starred     bool       `json:"starred"`
	RemindAt    *time.Time `json:"remindAt,omitempty"`
	ListID      string     `json:"listId"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskPatch - частичное обновление задачи; nil означает "не менять".
// ClearRemindAt снимает напоминание.
type TaskPatch struct {
	Title         *string
	Description   *string
	Starred       *bool
	RemindAt      *time.Time
	ClearRemindAt bool
}

// Apply применяет изменения к задаче
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Starred != nil {
		t.Starred = *p.Starred
	}
	if p.ClearRemindAt {
		t.RemindAt = nil
	} else if p.RemindAt != nil {
		at := *p.RemindAt
		t.RemindAt = &at
	}
}
