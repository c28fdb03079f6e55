package http

import (
	"strings"
	"time"

	"github.com/sun1tar/taskmanager/internal/models"
	"github.com/sun1tar/taskmanager/internal/service"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

func (r *registerRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *loginRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type profileRequest struct {
	Username *string `json:"username" validate:"omitnil,min=3,max=50"`
	Email    *string `json:"email" validate:"omitnil,email"`
}

func (r *profileRequest) normalize() {
	r.Username = trimPtr(r.Username)
	r.Email = trimPtr(r.Email)
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,maxbytes=72"`
}

func (r *passwordRequest) normalize() {}

type listRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (r *listRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

type createTaskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Starred     bool   `json:"starred"`
	RemindAt    string `json:"remindAt" validate:"omitempty,rfc3339"`
}

func (r *createTaskRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.RemindAt = strings.TrimSpace(r.RemindAt)
}

func (r *createTaskRequest) toNewTask() service.NewTask {
	return service.NewTask{
		Title:       r.Title,
		Description: r.Description,
		Starred:     r.Starred,
		RemindAt:    parseTime(r.RemindAt),
	}
}

// updateTaskRequest: отсутствующее поле не меняется, remindAt "" снимает напоминание
type updateTaskRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
	Starred     *bool   `json:"starred"`
	RemindAt    *string `json:"remindAt" validate:"omitnil,rfc3339"`
}

func (r *updateTaskRequest) normalize() {
	r.Title = trimPtr(r.Title)
	r.RemindAt = trimPtr(r.RemindAt)
}

func (r *updateTaskRequest) toPatch() models.TaskPatch {
	patch := models.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Starred:     r.Starred,
	}
	if r.RemindAt != nil {
		if *r.RemindAt == "" {
			patch.ClearRemindAt = true
		} else {
			patch.RemindAt = parseTime(*r.RemindAt)
		}
	}
	return patch
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// parseTime вызывается после валидации, поэтому ошибка разбора невозможна
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
