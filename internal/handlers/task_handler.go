package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/artello/backend/internal/models"
	"github.com/artello/backend/internal/services"
)

// TaskRepoForHandler is the subset of the task repository needed here.
type TaskRepoForHandler interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
}

// TaskRanker previews candidate rankings.
type TaskRanker interface {
	RankArtists(ctx context.Context, task *models.Task, level int) ([]models.ArtistScore, error)
}

// TaskAssigner runs the offer/escalation flow for a task.
type TaskAssigner interface {
	AssignTask(ctx context.Context, task *models.Task, level int) error
}

// TaskHandler serves /v1/tasks endpoints.
type TaskHandler struct {
	TaskRepo TaskRepoForHandler
	Ranker   TaskRanker
	Assigner TaskAssigner
	Logger   *slog.Logger
}

type createTaskRequest struct {
	ClientID       string     `json:"client_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	CategorySlug   *string    `json:"category_slug,omitempty"`
	RequiredSkills []string   `json:"required_skills"`
	EstimatedHours float64    `json:"estimated_hours"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	// Complexity and Urgency are optional; empty values are auto-detected.
	Complexity models.TaskComplexity `json:"complexity,omitempty"`
	Urgency    models.TaskUrgency    `json:"urgency,omitempty"`
}

// CreateTask handles POST /v1/tasks: create, auto-classify when needed, and
// start the assignment flow at level 1.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client_id")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	now := time.Now()
	complexity := req.Complexity
	if complexity == "" {
		complexity = services.DetectComplexity(req.EstimatedHours, req.RequiredSkills, req.Description)
	}
	urgency := req.Urgency
	if urgency == "" {
		urgency = services.DetectUrgency(req.Deadline, now)
	}

	task := &models.Task{
		ID:             uuid.New(),
		ClientID:       clientID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         models.TaskStatusQueued,
		Complexity:     complexity,
		Urgency:        urgency,
		CategorySlug:   req.CategorySlug,
		RequiredSkills: req.RequiredSkills,
		EstimatedHours: req.EstimatedHours,
		Deadline:       req.Deadline,
	}
	if err := h.TaskRepo.Create(r.Context(), task); err != nil {
		h.Logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.Assigner.AssignTask(r.Context(), task, 1); err != nil {
		h.Logger.Error("assign task", "task_id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "assignment failed")
		return
	}

	writeJSON(w, http.StatusAccepted, task)
}

// GetTask handles GET /v1/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ListCandidates handles GET /v1/tasks/{id}/candidates: a ranking preview at
// the requested escalation level (default: the task's current level, min 1).
func (h *TaskHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	level := task.EscalationLevel
	if raw := r.URL.Query().Get("level"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 3 {
			writeError(w, http.StatusBadRequest, "level must be 1-3")
			return
		}
		level = parsed
	}
	if level < 1 {
		level = 1
	}

	ranked, err := h.Ranker.RankArtists(r.Context(), task, level)
	if err != nil {
		h.Logger.Error("rank artists", "task_id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task_id":    task.ID,
		"level":      level,
		"candidates": ranked,
	})
}

// Assign handles POST /v1/tasks/{id}/assign: a manual retrigger of the
// assignment flow.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	switch task.Status {
	case models.TaskStatusAssigned, models.TaskStatusInProgress, models.TaskStatusCompleted, models.TaskStatusCancelled:
		writeError(w, http.StatusConflict, "task is not awaiting assignment")
		return
	}

	level := task.EscalationLevel
	if level < 1 {
		level = 1
	}
	if err := h.Assigner.AssignTask(r.Context(), task, level); err != nil {
		h.Logger.Error("assign task", "task_id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "assignment failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "assignment started"})
}

func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return nil, false
	}
	task, err := h.TaskRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "task not found")
			return nil, false
		}
		h.Logger.Error("get task", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return task, true
}
