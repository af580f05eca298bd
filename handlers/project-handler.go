package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"staffly/projects-service/models"
	"staffly/projects-service/services"
	"staffly/projects-service/utils"

	"github.com/gorilla/mux"
)

var adminRoles = []string{"admin", "hr_manager"}

type ProjectHandler struct {
	Service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

func checkRole(r *http.Request, allowedRoles []string) error {
	userRole := r.Header.Get("Role")
	if userRole == "" {
		return fmt.Errorf("role is missing in request header")
	}

	for _, role := range allowedRoles {
		if role == userRole {
			return nil
		}
	}
	return fmt.Errorf("access forbidden: user does not have the required role")
}

func isAdmin(r *http.Request) bool {
	return checkRole(r, adminRoles) == nil
}

// actor resolves the acting user from the bearer token.
func actor(r *http.Request) (username, name string, err error) {
	tokenString := r.Header.Get("Authorization")
	if tokenString == "" {
		return "", "", fmt.Errorf("authorization token required")
	}
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	return utils.ExtractUserFromToken(tokenString)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrDayNotFound),
		errors.Is(err, services.ErrSubtaskNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrUnauthorized),
		errors.Is(err, services.ErrEmployeeNotAssigned):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrGeneratorUnavailable):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, adminRoles); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	username, name, err := actor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req services.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Project title is required", http.StatusBadRequest)
		return
	}
	if len(req.AssignedEmployees) == 0 {
		http.Error(w, "At least one assigned employee is required", http.StatusBadRequest)
		return
	}
	if req.StartDate.IsZero() {
		http.Error(w, "Start date is required", http.StatusBadRequest)
		return
	}
	if req.DistributionSettings.Strategy == "" {
		req.DistributionSettings.Strategy = models.StrategyEvenLoad
	}

	project, err := h.Service.CreateProject(r.Context(), req, username, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(project)
}

func (h *ProjectHandler) GetProjectByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project, err := h.Service.GetProjectByID(r.Context(), vars["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(project)
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Service.GetAllProjects(r.Context(), r.URL.Query().Get("status"), r.URL.Query().Get("createdBy"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	json.NewEncoder(w).Encode(projects)
}

func (h *ProjectHandler) ReassignProject(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, adminRoles); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	username, name, err := actor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var body struct {
		AssignedEmployees    []models.AssignedEmployee   `json:"assignedEmployees"`
		DistributionSettings models.DistributionSettings `json:"distributionSettings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(body.AssignedEmployees) == 0 {
		http.Error(w, "At least one assigned employee is required", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	project, err := h.Service.ReassignProject(r.Context(), vars["id"], body.AssignedEmployees, body.DistributionSettings, username, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(project)
}

func (h *ProjectHandler) CompleteSubtask(w http.ResponseWriter, r *http.Request) {
	username, name, err := actor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	dayNumber, err := strconv.Atoi(vars["dayNumber"])
	if err != nil {
		http.Error(w, "Invalid day number", http.StatusBadRequest)
		return
	}
	subtaskIndex, err := strconv.Atoi(vars["subtaskIndex"])
	if err != nil {
		http.Error(w, "Invalid subtask index", http.StatusBadRequest)
		return
	}

	// an admin may complete on behalf of any assignee
	employeeRef := r.URL.Query().Get("employeeRef")
	if employeeRef == "" {
		employeeRef = username
	}

	project, err := h.Service.CompleteSubtask(r.Context(), vars["id"], dayNumber, employeeRef, subtaskIndex, username, name, isAdmin(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(project)
}

func (h *ProjectHandler) CompleteDay(w http.ResponseWriter, r *http.Request) {
	username, name, err := actor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	dayNumber, err := strconv.Atoi(vars["dayNumber"])
	if err != nil {
		http.Error(w, "Invalid day number", http.StatusBadRequest)
		return
	}

	var body struct {
		Comment string `json:"comment,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	project, err := h.Service.CompleteDay(r.Context(), vars["id"], dayNumber, username, name, body.Comment, isAdmin(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(project)
}

func (h *ProjectHandler) SetDayStatus(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, adminRoles); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	username, name, err := actor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	dayNumber, err := strconv.Atoi(vars["dayNumber"])
	if err != nil {
		http.Error(w, "Invalid day number", http.StatusBadRequest)
		return
	}

	var body struct {
		Status models.DayStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	project, err := h.Service.SetDayStatus(r.Context(), vars["id"], dayNumber, body.Status, username, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(project)
}

func (h *ProjectHandler) RefinePlan(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, adminRoles); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	username, name, err := actor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var body struct {
		Instructions string `json:"instructions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if body.Instructions == "" {
		http.Error(w, "Refinement instructions are required", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	project, err := h.Service.RefinePlan(r.Context(), vars["id"], body.Instructions, username, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	json.NewEncoder(w).Encode(project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, adminRoles); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	if err := h.Service.DeleteProject(r.Context(), vars["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) GetTasksForUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tasks, err := h.Service.GetTasksForUser(r.Context(), vars["employeeRef"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.UserTask{}
	}
	json.NewEncoder(w).Encode(tasks)
}
