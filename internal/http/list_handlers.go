package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sun1tar/taskmanager/internal/middleware"
	"github.com/sun1tar/taskmanager/internal/service"
)

type ListHandler struct {
	base
	lists *service.ListService
}

// ListLists обрабатывает GET /api/lists
func (h *ListHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	logEntry := h.entry(r, "ListLists")

	lists, err := h.lists.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.fail(w, logEntry, err)
		return
	}

	logEntry.WithField("count", len(lists)).Debug("lists listed")
	writeJSON(w, http.StatusOK, lists)
}

// CreateList обрабатывает POST /api/lists
func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	logEntry := h.entry(r, "CreateList")

	var req listRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, logEntry, err)
		return
	}

	list, err := h.lists.Create(r.Context(), middleware.UserID(r.Context()), req.Name)
	if err != nil {
		h.fail(w, logEntry, err)
		return
	}

	logEntry.WithField("list_id", list.ID).Info("list created")
	writeJSON(w, http.StatusCreated, list)
}

// RenameList обрабатывает PUT /api/lists/{id}
func (h *ListHandler) RenameList(w http.ResponseWriter, r *http.Request) {
	logEntry := h.entry(r, "RenameList")
	id := mux.Vars(r)["id"]

	var req listRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, logEntry, err)
		return
	}

	list, err := h.lists.Rename(r.Context(), middleware.UserID(r.Context()), id, req.Name)
	if err != nil {
		h.fail(w, logEntry.WithField("list_id", id), err)
		return
	}

	logEntry.WithField("list_id", id).Info("list renamed")
	writeJSON(w, http.StatusOK, list)
}

// DeleteList обрабатывает DELETE /api/lists/{id}; задачи списка удаляются вместе с ним
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	logEntry := h.entry(r, "DeleteList")
	id := mux.Vars(r)["id"]

	if err := h.lists.Delete(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		h.fail(w, logEntry.WithField("list_id", id), err)
		return
	}

	logEntry.WithField("list_id", id).Info("list deleted")
	writeJSON(w, http.StatusOK, messageResponse{Message: "list deleted"})
}
