package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fr-yash/CoBuilderr/internal/api/middleware"
	"github.com/fr-yash/CoBuilderr/internal/models"
)

// Project name validation: 1-100 chars after trimming, no control chars.
var projectNameRegex = regexp.MustCompile(`^[^\x00-\x1f]{1,100}$`)

// CreateProjectRequest represents the project creation request.
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// AddUserRequest represents the add-collaborators request.
type AddUserRequest struct {
	ProjectID string   `json:"projectId"`
	Users     []string `json:"users"`
}

// CreateProject handles project creation (authenticated).
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if !projectNameRegex.MatchString(req.Name) {
		h.Error(w, http.StatusBadRequest, "name must be 1-100 printable characters")
		return
	}

	project, err := h.db.CreateProject(r.Context(), req.Name, claims.UserID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
			h.Error(w, http.StatusConflict, "project name already exists")
			return
		}
		h.Error(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	h.JSON(w, http.StatusCreated, map[string]*models.Project{"project": project})
}

// ListProjects returns every project the caller belongs to.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	projects, err := h.db.ListProjectsForUser(r.Context(), claims.UserID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	h.JSON(w, http.StatusOK, map[string][]models.Project{"projects": projects})
}

// GetProject returns one project with its member list. Only members may
// look it up.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid project ID format")
		return
	}

	project, err := h.db.GetProject(r.Context(), projectID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if project == nil {
		h.Error(w, http.StatusNotFound, "project not found")
		return
	}

	member, err := h.db.IsProjectMember(r.Context(), projectID, claims.UserID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if !member {
		h.Error(w, http.StatusForbidden, "user does not belong to this project")
		return
	}

	h.JSON(w, http.StatusOK, map[string]*models.Project{"project": project})
}

// AddUsers adds collaborators to a project. Only an existing member may
// add members.
func (h *Handler) AddUsers(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid projectId")
		return
	}
	if len(req.Users) == 0 {
		h.Error(w, http.StatusBadRequest, "users are required")
		return
	}

	userIDs := make([]uuid.UUID, 0, len(req.Users))
	for _, raw := range req.Users {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid userId in users array")
			return
		}
		userIDs = append(userIDs, id)
	}

	member, err := h.db.IsProjectMember(r.Context(), projectID, claims.UserID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if !member {
		h.Error(w, http.StatusForbidden, "user does not belong to this project")
		return
	}

	project, err := h.db.AddProjectMembers(r.Context(), projectID, userIDs)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to add users")
		return
	}

	h.JSON(w, http.StatusOK, map[string]*models.Project{"project": project})
}

// GetProjectMessages returns the recent-message window cached in Redis.
func (h *Handler) GetProjectMessages(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid project ID format")
		return
	}

	member, err := h.db.IsProjectMember(r.Context(), projectID, claims.UserID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if !member {
		h.Error(w, http.StatusForbidden, "user does not belong to this project")
		return
	}

	messages := []models.MessageEnvelope{}
	if h.redis != nil {
		limit := 50
		if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
			limit = l
		}
		messages, err = h.redis.GetRoomMessages(r.Context(), projectID.String(), limit)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
			return
		}
	}

	h.JSON(w, http.StatusOK, map[string][]models.MessageEnvelope{"messages": messages})
}
