package handlers

import (
	"encoding/json"
	"net/http"

	"staffly/projects-service/models"
	"staffly/projects-service/repositories"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	Repo *repositories.NotificationRepository
}

func NewNotificationHandler(repo *repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{Repo: repo}
}

// GetNotificationsByChannel returns the feed for one channel, e.g.
// "user:emp-42" or "project:64f...".
func (h *NotificationHandler) GetNotificationsByChannel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	notifications, err := h.Repo.ListByChannel(vars["channel"])
	if err != nil {
		http.Error(w, "Failed to fetch notifications", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	json.NewEncoder(w).Encode(notifications)
}
