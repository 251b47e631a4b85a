// internal/app/features/tasks/handler.go
package tasks

import (
	"context"
	"errors"
	"net/http"
	"time"

	apierrors "github.com/synergysphere/synergysphere/internal/app/features/errors"
	projectstore "github.com/synergysphere/synergysphere/internal/app/store/projects"
	taskstore "github.com/synergysphere/synergysphere/internal/app/store/tasks"
	userstore "github.com/synergysphere/synergysphere/internal/app/store/users"
	"github.com/synergysphere/synergysphere/internal/app/policy"
	"github.com/synergysphere/synergysphere/internal/app/policy/projectpolicy"
	"github.com/synergysphere/synergysphere/internal/app/policy/taskpolicy"
	"github.com/synergysphere/synergysphere/internal/app/system/authz"
	"github.com/synergysphere/synergysphere/internal/app/system/httpjson"
	"github.com/synergysphere/synergysphere/internal/app/system/timeouts"
	"github.com/synergysphere/synergysphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Tasks    *taskstore.Store
	Projects *projectstore.Store
	Users    *userstore.Store
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
}

func NewHandler(tasks *taskstore.Store, projects *projectstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Tasks:    tasks,
		Projects: projects,
		Users:    users,
		Log:      logger,
		ErrLog:   apierrors.NewErrorLogger(logger, "tasks"),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| View models                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type userRef struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name,omitempty"`
	Email string             `json:"email,omitempty"`
}

type projectRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name,omitempty"`
}

// taskView is a task with its assignee and project references resolved.
type taskView struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Project     projectRef         `json:"project"`
	Assignee    *userRef           `json:"assignee,omitempty"`
	DueDate     *time.Time         `json:"dueDate,omitempty"`
	Status      string             `json:"status"`
	ImageURL    string             `json:"imageUrl,omitempty"`
	Creator     primitive.ObjectID `json:"creator"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func baseView(t *models.Task) taskView {
	return taskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Project:     projectRef{ID: t.ProjectID},
		DueDate:     t.DueDate,
		Status:      t.Status,
		ImageURL:    t.ImageURL,
		Creator:     t.CreatorID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// buildViews resolves assignee refs for a batch of tasks with one user
// lookup.
func (h *Handler) buildViews(ctx context.Context, tasks []models.Task) ([]taskView, error) {
	var assigneeIDs []primitive.ObjectID
	for i := range tasks {
		if tasks[i].AssigneeID != nil {
			assigneeIDs = append(assigneeIDs, *tasks[i].AssigneeID)
		}
	}
	refs, err := h.Users.GetRefs(ctx, assigneeIDs)
	if err != nil {
		return nil, err
	}

	views := make([]taskView, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		v := baseView(t)
		if t.AssigneeID != nil {
			if ref, ok := refs[*t.AssigneeID]; ok {
				v.Assignee = &userRef{ID: ref.ID, Name: ref.Name, Email: ref.Email}
			} else {
				v.Assignee = &userRef{ID: *t.AssigneeID}
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (h *Handler) buildView(ctx context.Context, t *models.Task) (taskView, error) {
	views, err := h.buildViews(ctx, []models.Task{*t})
	if err != nil {
		return taskView{}, err
	}
	return views[0], nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Guards                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// loadGuardedTask loads a task and its project, then applies the member
// guard. Writes the error response itself and returns ok=false when the
// caller may not proceed.
func (h *Handler) loadGuardedTask(ctx context.Context, w http.ResponseWriter, callerID, taskID primitive.ObjectID) (*models.Task, *models.Project, bool) {
	t, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.ServerError(w, "tasks: get failed", err)
		return nil, nil, false
	}

	var p *models.Project
	if t != nil {
		p, err = h.Projects.GetByID(ctx, t.ProjectID)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.ServerError(w, "tasks: project get failed", err)
			return nil, nil, false
		}
	}

	switch taskpolicy.CanMutate(callerID, t, p) {
	case policy.Allowed:
		return t, p, true
	case policy.Forbidden:
		apierrors.Forbidden(w, "You are not a member of this project")
		return nil, nil, false
	default:
		apierrors.NotFound(w, "Task not found")
		return nil, nil, false
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Handlers                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type createRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ProjectID   string     `json:"projectId"`
	Assignee    string     `json:"assignee"`
	DueDate     *time.Time `json:"dueDate"`
	ImageURL    string     `json:"imageUrl"`
}

// HandleCreate handles POST /tasks.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Unauthorized(w, "")
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierrors.BadRequest(w, err.Error())
		return
	}

	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		apierrors.BadRequest(w, "invalid projectId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.ServerError(w, "tasks: project get failed", err)
		return
	}
	switch projectpolicy.CanActOnTasks(callerID, p) {
	case policy.Allowed:
	case policy.Forbidden:
		apierrors.Forbidden(w, "You are not a member of this project")
		return
	default:
		apierrors.NotFound(w, "Project not found")
		return
	}

	in := taskstore.NewTask{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   projectID,
		DueDate:     req.DueDate,
		ImageURL:    req.ImageURL,
	}
	if req.Assignee != "" {
		aid, err := primitive.ObjectIDFromHex(req.Assignee)
		if err != nil {
			apierrors.BadRequest(w, "invalid assignee id")
			return
		}
		if !p.HasMember(aid) {
			apierrors.BadRequest(w, "Assignee must be a member of the project")
			return
		}
		in.AssigneeID = &aid
	}

	t, err := h.Tasks.Create(ctx, callerID, in)
	switch {
	case err == nil:
		h.Log.Info("task created",
			zap.String("task_id", t.ID.Hex()),
			zap.String("project_id", projectID.Hex()))
		view, verr := h.buildView(ctx, &t)
		if verr != nil {
			h.ErrLog.ServerError(w, "tasks: resolve refs failed", verr)
			return
		}
		httpjson.Write(w, http.StatusCreated, view)
	case errors.Is(err, taskstore.ErrTitleRequired), errors.Is(err, taskstore.ErrBadStatus):
		apierrors.BadRequest(w, err.Error())
	default:
		h.ErrLog.ServerError(w, "tasks: create failed", err)
	}
}

// HandleListByProject handles GET /tasks/project/{projectID}.
func (h *Handler) HandleListByProject(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Unauthorized(w, "")
		return
	}

	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		apierrors.NotFound(w, "Project not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.ServerError(w, "tasks: project get failed", err)
		return
	}
	switch projectpolicy.CanActOnTasks(callerID, p) {
	case policy.Allowed:
	case policy.Forbidden:
		apierrors.Forbidden(w, "You are not a member of this project")
		return
	default:
		apierrors.NotFound(w, "Project not found")
		return
	}

	list, err := h.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		h.ErrLog.ServerError(w, "tasks: list failed", err)
		return
	}

	views, err := h.buildViews(ctx, list)
	if err != nil {
		h.ErrLog.ServerError(w, "tasks: resolve refs failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, views)
}

// HandleListMine handles GET /tasks/mytasks: the caller's assigned tasks
// across all projects, soonest due first.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Unauthorized(w, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Tasks.ListByAssignee(ctx, callerID)
	if err != nil {
		h.ErrLog.ServerError(w, "tasks: list mine failed", err)
		return
	}

	views, err := h.buildViews(ctx, list)
	if err != nil {
		h.ErrLog.ServerError(w, "tasks: resolve refs failed", err)
		return
	}

	// Resolve project names so the dashboard can label each task.
	projectIDs := make([]primitive.ObjectID, 0, len(list))
	seen := make(map[primitive.ObjectID]bool)
	for i := range list {
		if !seen[list[i].ProjectID] {
			seen[list[i].ProjectID] = true
			projectIDs = append(projectIDs, list[i].ProjectID)
		}
	}
	names, err := h.Projects.GetNames(ctx, projectIDs)
	if err != nil {
		h.ErrLog.ServerError(w, "tasks: resolve project names failed", err)
		return
	}
	for i := range views {
		views[i].Project.Name = names[views[i].Project.ID]
	}

	httpjson.Write(w, http.StatusOK, views)
}

// HandleGet handles GET /tasks/{taskID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Unauthorized(w, "")
		return
	}

	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	if err != nil {
		apierrors.NotFound(w, "Task not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, _, ok := h.loadGuardedTask(ctx, w, callerID, taskID)
	if !ok {
		return
	}

	view, err := h.buildView(ctx, t)
	if err != nil {
		h.ErrLog.ServerError(w, "tasks: resolve refs failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, view)
}

type updateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Assignee    *string    `json:"assignee"`
	DueDate     *time.Time `json:"dueDate"`
	Status      *string    `json:"status"`
	ImageURL    *string    `json:"imageUrl"`
}

// HandleUpdate handles PUT /tasks/{taskID}. Any member may edit the
// task's fields, but a request that carries a status change is held to
// the same assignee-only rule as the dedicated status endpoint.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Unauthorized(w, "")
		return
	}

	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	if err != nil {
		apierrors.NotFound(w, "Task not found")
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierrors.BadRequest(w, err.Error())
		return
	}
	if req.Status != nil && !models.IsValidStatus(*req.Status) {
		apierrors.BadRequest(w, `status must be "To-Do"|"In Progress"|"Done"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, p, ok := h.loadGuardedTask(ctx, w, callerID, taskID)
	if !ok {
		return
	}

	if req.Status != nil && taskpolicy.CanChangeStatus(callerID, t) != policy.Allowed {
		apierrors.Forbidden(w, "Only the assignee can change the task status")
		return
	}

	in := taskstore.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
		ImageURL:    req.ImageURL,
	}
	if req.Assignee != nil {
		if *req.Assignee == "" {
			in.ClearAssignee = true
		} else {
			aid, err := primitive.ObjectIDFromHex(*req.Assignee)
			if err != nil {
				apierrors.BadRequest(w, "invalid assignee id")
				return
			}
			if !p.HasMember(aid) {
				apierrors.BadRequest(w, "Assignee must be a member of the project")
				return
			}
			in.AssigneeID = &aid
		}
	}

	updated, err := h.Tasks.Update(ctx, taskID, callerID, in)
	switch {
	case err == nil:
	case errors.Is(err, mongo.ErrNoDocuments):
		apierrors.NotFound(w, "Task not found")
		return
	case errors.Is(err, taskstore.ErrTitleRequired), errors.Is(err, taskstore.ErrBadStatus):
		apierrors.BadRequest(w, err.Error())
		return
	case errors.Is(err, taskstore.ErrNotAssignee):
		// Reassigned out from under the caller mid-request; nothing was
		// written.
		apierrors.Forbidden(w, "Only the assignee can change the task status")
		return
	default:
		h.ErrLog.ServerError(w, "tasks: update failed", err)
		return
	}

	view, err := h.buildView(ctx, updated)
	if err != nil {
		h.ErrLog.ServerError(w, "tasks: resolve refs failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, view)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleSetStatus handles PUT /tasks/{taskID}/status: the board's
// transition endpoint. The assignee check is part of the store's update
// filter, so no load-then-write race can move a task for a stale caller.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Unauthorized(w, "")
		return
	}

	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	if err != nil {
		apierrors.NotFound(w, "Task not found")
		return
	}

	var req statusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierrors.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Tasks.SetStatus(ctx, taskID, callerID, req.Status)
	switch {
	case err == nil:
	case errors.Is(err, taskstore.ErrBadStatus):
		apierrors.BadRequest(w, err.Error())
		return
	case errors.Is(err, taskstore.ErrNotAssignee):
		apierrors.Forbidden(w, "Only the assignee can change the task status")
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		apierrors.NotFound(w, "Task not found")
		return
	default:
		h.ErrLog.ServerError(w, "tasks: status update failed", err)
		return
	}

	h.Log.Info("task status changed",
		zap.String("task_id", taskID.Hex()),
		zap.String("status", updated.Status),
		zap.String("user_id", callerID.Hex()))

	view, err := h.buildView(ctx, updated)
	if err != nil {
		h.ErrLog.ServerError(w, "tasks: resolve refs failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, view)
}
