package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sun1tar/taskmanager/internal/middleware"
	"github.com/sun1tar/taskmanager/internal/service"
)

type TaskHandler struct {
	base
	tasks *service.TaskService
}

// ListTasks обрабатывает GET /api/tasks/{listId}
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	listID := mux.Vars(r)["listId"]
	logEntry := h.entry(r, "ListTasks").WithField("list_id", listID)

	tasks, err := h.tasks.List(r.Context(), middleware.UserID(r.Context()), listID)
	if err != nil {
		h.fail(w, logEntry, err)
		return
	}

	logEntry.WithField("count", len(tasks)).Debug("tasks listed")
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask обрабатывает POST /api/tasks/{listId}
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	listID := mux.Vars(r)["listId"]
	logEntry := h.entry(r, "CreateTask").WithField("list_id", listID)

	var req createTaskRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, logEntry, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), middleware.UserID(r.Context()), listID, req.toNewTask())
	if err != nil {
		h.fail(w, logEntry, err)
		return
	}

	logEntry.WithField("task_id", task.ID).Info("task created")
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask обрабатывает PUT /api/tasks/{listId}/{taskId}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	logEntry := h.entry(r, "UpdateTask").WithFields(logrus.Fields{
		"list_id": vars["listId"],
		"task_id": vars["taskId"],
	})

	var req updateTaskRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, logEntry, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), middleware.UserID(r.Context()), vars["listId"], vars["taskId"], req.toPatch())
	if err != nil {
		h.fail(w, logEntry, err)
		return
	}

	logEntry.Info("task updated")
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask обрабатывает DELETE /api/tasks/{listId}/{taskId}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	logEntry := h.entry(r, "DeleteTask").WithFields(logrus.Fields{
		"list_id": vars["listId"],
		"task_id": vars["taskId"],
	})

	if err := h.tasks.Delete(r.Context(), middleware.UserID(r.Context()), vars["listId"], vars["taskId"]); err != nil {
		h.fail(w, logEntry, err)
		return
	}

	logEntry.Info("task deleted")
	writeJSON(w, http.StatusOK, messageResponse{Message: "task deleted"})
}

// Starred обрабатывает GET /api/starred
func (h *TaskHandler) Starred(w http.ResponseWriter, r *http.Request) {
	logEntry := h.entry(r, "Starred")

	tasks, err := h.tasks.Starred(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.fail(w, logEntry, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}
