package tasks_test

import (
	"net/http"
	"testing"

	projectsfeature "github.com/synergysphere/synergysphere/internal/app/features/projects"
	"github.com/synergysphere/synergysphere/internal/app/features/tasks"
	projectstore "github.com/synergysphere/synergysphere/internal/app/store/projects"
	taskstore "github.com/synergysphere/synergysphere/internal/app/store/tasks"
	userstore "github.com/synergysphere/synergysphere/internal/app/store/users"
	"github.com/synergysphere/synergysphere/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// The full collaboration flow: one owner builds a team, an outsider is
// kept out at every door, and the board's status rule holds end to end.
func TestCollaborationFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := zap.NewNop()
	users := userstore.New(db)
	projectsHandler := projectsfeature.NewHandler(projectstore.New(db), users, logger)
	tasksHandler := tasks.NewHandler(taskstore.New(db), projectstore.New(db), users, logger)

	alice := testutil.AsTestUser(fixtures.CreateUser(ctx, "Alice", "alice@example.com"))
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	carol := testutil.AsTestUser(fixtures.CreateUser(ctx, "Carol", "carol@example.com"))

	// Alice creates a project.
	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/projects", map[string]any{"name": "Launch"}), alice)
	rec := testutil.NewRecorder()
	projectsHandler.HandleCreate(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)
	var created struct {
		ID primitive.ObjectID `json:"id"`
	}
	rec.DecodeJSON(t, &created)
	projectID := created.ID.Hex()

	// Alice invites Bob.
	req = testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/projects/"+projectID+"/members", map[string]string{"email": "bob@example.com"}), alice)
	req = testutil.WithChiURLParam(req, "projectID", projectID)
	rec = testutil.NewRecorder()
	projectsHandler.HandleAddMember(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	// Carol cannot see the project and cannot invite herself.
	req = testutil.NewAuthenticatedRequest("GET", "/projects/"+projectID, carol)
	req = testutil.WithChiURLParam(req, "projectID", projectID)
	rec = testutil.NewRecorder()
	projectsHandler.HandleGet(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusForbidden)

	req = testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/projects/"+projectID+"/members", map[string]string{"email": "carol@example.com"}), carol)
	req = testutil.WithChiURLParam(req, "projectID", projectID)
	rec = testutil.NewRecorder()
	projectsHandler.HandleAddMember(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// Alice creates a task for Bob; it starts in To-Do.
	req = testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/tasks", map[string]any{
		"title":     "Prepare launch checklist",
		"projectId": projectID,
		"assignee":  bob.ID.Hex(),
	}), alice)
	rec = testutil.NewRecorder()
	tasksHandler.HandleCreate(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)
	var task struct {
		ID     primitive.ObjectID `json:"id"`
		Status string             `json:"status"`
	}
	rec.DecodeJSON(t, &task)
	if task.Status != "To-Do" {
		t.Fatalf("new task status: got %q, want To-Do", task.Status)
	}
	taskID := task.ID.Hex()

	// Bob, the assignee, moves it forward.
	req = testutil.WithUser(testutil.NewJSONRequest(t, "PUT", "/tasks/"+taskID+"/status", map[string]string{"status": "In Progress"}), testutil.AsTestUser(bob))
	req = testutil.WithChiURLParam(req, "taskID", taskID)
	rec = testutil.NewRecorder()
	tasksHandler.HandleSetStatus(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	// Alice owns the project but is not the assignee; she may not.
	req = testutil.WithUser(testutil.NewJSONRequest(t, "PUT", "/tasks/"+taskID+"/status", map[string]string{"status": "Done"}), alice)
	req = testutil.WithChiURLParam(req, "taskID", taskID)
	rec = testutil.NewRecorder()
	tasksHandler.HandleSetStatus(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusForbidden)
}
