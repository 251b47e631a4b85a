// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"errors"
	"net/http"
	"time"

	apierrors "github.com/synergysphere/synergysphere/internal/app/features/errors"
	projectstore "github.com/synergysphere/synergysphere/internal/app/store/projects"
	userstore "github.com/synergysphere/synergysphere/internal/app/store/users"
	"github.com/synergysphere/synergysphere/internal/app/policy"
	"github.com/synergysphere/synergysphere/internal/app/policy/projectpolicy"
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
	Projects *projectstore.Store
	Users    *userstore.Store
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
}

func NewHandler(projects *projectstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Projects: projects,
		Users:    users,
		Log:      logger,
		ErrLog:   apierrors.NewErrorLogger(logger, "projects"),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| View models                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// projectView is a project with its user references resolved for the
// client. Unresolvable references (deleted users) fall back to bare IDs.
type projectView struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Owner       userRef            `json:"owner"`
	Members     []userRef          `json:"members"`
	Tags        []string           `json:"tags,omitempty"`
	Manager     *userRef           `json:"projectManager,omitempty"`
	Deadline    *time.Time         `json:"deadline,omitempty"`
	Priority    string             `json:"priority"`
	ImageURL    string             `json:"imageUrl,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type userRef struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name,omitempty"`
	Email string             `json:"email,omitempty"`
}

func toUserRef(id primitive.ObjectID, refs map[primitive.ObjectID]models.UserRef) userRef {
	if ref, ok := refs[id]; ok {
		return userRef{ID: ref.ID, Name: ref.Name, Email: ref.Email}
	}
	return userRef{ID: id}
}

func (h *Handler) buildView(ctx context.Context, p *models.Project) (projectView, error) {
	ids := make([]primitive.ObjectID, 0, len(p.MemberIDs)+2)
	ids = append(ids, p.OwnerID)
	ids = append(ids, p.MemberIDs...)
	if p.ManagerID != nil {
		ids = append(ids, *p.ManagerID)
	}

	refs, err := h.Users.GetRefs(ctx, ids)
	if err != nil {
		return projectView{}, err
	}

	v := projectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Owner:       toUserRef(p.OwnerID, refs),
		Members:     make([]userRef, 0, len(p.MemberIDs)),
		Tags:        p.Tags,
		Deadline:    p.Deadline,
		Priority:    p.Priority,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, id := range p.MemberIDs {
		v.Members = append(v.Members, toUserRef(id, refs))
	}
	if p.ManagerID != nil {
		m := toUserRef(*p.ManagerID, refs)
		v.Manager = &m
	}
	return v, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Handlers                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type createRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	ManagerID   string     `json:"projectManager"`
	Deadline    *time.Time `json:"deadline"`
	Priority    string     `json:"priority"`
	ImageURL    string     `json:"imageUrl"`
}

// HandleCreate handles POST /projects.
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

	in := projectstore.NewProject{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Deadline:    req.Deadline,
		Priority:    req.Priority,
		ImageURL:    req.ImageURL,
	}
	if req.ManagerID != "" {
		mid, err := primitive.ObjectIDFromHex(req.ManagerID)
		if err != nil {
			apierrors.BadRequest(w, "invalid projectManager id")
			return
		}
		in.ManagerID = &mid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.Create(ctx, callerID, in)
	switch {
	case err == nil:
		h.Log.Info("project created",
			zap.String("project_id", p.ID.Hex()),
			zap.String("owner_id", callerID.Hex()))
		view, verr := h.buildView(ctx, &p)
		if verr != nil {
			h.ErrLog.ServerError(w, "projects: resolve refs failed", verr)
			return
		}
		httpjson.Write(w, http.StatusCreated, view)
	case errors.Is(err, projectstore.ErrNameRequired),
		errors.Is(err, projectstore.ErrBadPriority),
		errors.Is(err, projectstore.ErrManagerNotMember):
		apierrors.BadRequest(w, err.Error())
	default:
		h.ErrLog.ServerError(w, "projects: create failed", err)
	}
}

// HandleList handles GET /projects. Only the caller's own projects come
// back; there is no way to enumerate someone else's.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Unauthorized(w, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Projects.ListForMember(ctx, callerID)
	if err != nil {
		h.ErrLog.ServerError(w, "projects: list failed", err)
		return
	}

	views := make([]projectView, 0, len(list))
	for i := range list {
		v, err := h.buildView(ctx, &list[i])
		if err != nil {
			h.ErrLog.ServerError(w, "projects: resolve refs failed", err)
			return
		}
		views = append(views, v)
	}
	httpjson.Write(w, http.StatusOK, views)
}

// HandleGet handles GET /projects/{projectID}. An absent project is a
// 404; a present one the caller doesn't belong to is a 403. The split is
// observable but matches how every client treats the endpoint.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.ServerError(w, "projects: get failed", err)
		return
	}

	switch projectpolicy.CanView(callerID, p) {
	case policy.Allowed:
	case policy.Forbidden:
		apierrors.Forbidden(w, "You are not a member of this project")
		return
	default:
		apierrors.NotFound(w, "Project not found")
		return
	}

	view, err := h.buildView(ctx, p)
	if err != nil {
		h.ErrLog.ServerError(w, "projects: resolve refs failed", err)
		return
	}
	httpjson.Write(w, http.StatusOK, view)
}

type addMemberRequest struct {
	Email string `json:"email"`
}

// HandleAddMember handles POST /projects/{projectID}/members. Only the
// owner can invite, and the invited address must belong to a registered
// user.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
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

	var req addMemberRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierrors.BadRequest(w, err.Error())
		return
	}
	if req.Email == "" {
		apierrors.BadRequest(w, "email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.ServerError(w, "projects: get failed", err)
		return
	}

	switch projectpolicy.CanManageMembers(callerID, p) {
	case policy.Allowed:
	case policy.Forbidden:
		apierrors.Forbidden(w, "Only the project owner can add members")
		return
	default:
		apierrors.NotFound(w, "Project not found")
		return
	}

	candidate, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierrors.NotFound(w, "No user found with this email")
			return
		}
		h.ErrLog.ServerError(w, "projects: candidate lookup failed", err)
		return
	}

	members, err := h.Projects.AddMember(ctx, projectID, candidate.ID)
	switch {
	case err == nil:
		h.Log.Info("member added",
			zap.String("project_id", projectID.Hex()),
			zap.String("user_id", candidate.ID.Hex()))
		httpjson.Write(w, http.StatusOK, members)
	case errors.Is(err, projectstore.ErrAlreadyMember):
		apierrors.Conflict(w, "User is already a member of this project")
	case errors.Is(err, mongo.ErrNoDocuments):
		// Project deleted between the guard check and the write.
		apierrors.NotFound(w, "Project not found")
	default:
		h.ErrLog.ServerError(w, "projects: add member failed", err)
	}
}
