// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/synergysphere/synergysphere/internal/app/system/htmlsanitize"
	"github.com/synergysphere/synergysphere/internal/app/system/normalize"
	"github.com/synergysphere/synergysphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

var (
	ErrTitleRequired = errors.New("task title is required")
	ErrBadStatus     = errors.New(`status must be "To-Do"|"In Progress"|"Done"`)

	// ErrNotAssignee is returned when a status change is attempted by a
	// caller who is not the task's current assignee.
	ErrNotAssignee = errors.New("only the assignee can change the task status")
)

// NewTask describes the caller-supplied fields for task creation.
type NewTask struct {
	Title       string
	Description string
	ProjectID   primitive.ObjectID
	AssigneeID  *primitive.ObjectID
	DueDate     *time.Time
	Status      string
	ImageURL    string
}

// Create inserts a task in the given project. Membership checks on the
// creator and assignee belong to the caller via taskpolicy and the
// project's member set.
func (s *Store) Create(ctx context.Context, creatorID primitive.ObjectID, in NewTask) (models.Task, error) {
	title := normalize.Name(in.Title)
	if title == "" {
		return models.Task{}, ErrTitleRequired
	}

	status := in.Status
	if status == "" {
		status = models.StatusToDo
	}
	if !models.IsValidStatus(status) {
		return models.Task{}, ErrBadStatus
	}

	now := time.Now().UTC()
	t := models.Task{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: htmlsanitize.Sanitize(in.Description),
		ProjectID:   in.ProjectID,
		AssigneeID:  in.AssigneeID,
		DueDate:     in.DueDate,
		Status:      status,
		ImageURL:    in.ImageURL,
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetByID loads a task. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByProject returns every task in the project, oldest first.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByAssignee returns the user's assigned tasks ordered by due date
// ascending with undated tasks last. Mongo sorts missing fields first,
// so the nulls-last ordering is done here after the fetch.
func (s *Store) ListByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	cur, err := s.c.Find(ctx, bson.M{"assignee_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].DueDate, tasks[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return tasks, nil
}

// TaskUpdate carries the mutable fields of a task. Nil pointers leave
// the stored value untouched; ClearAssignee and ClearDueDate unset the
// corresponding field. A Status change is subject to the assignee rule
// and rides in the same write as the other fields.
type TaskUpdate struct {
	Title         *string
	Description   *string
	AssigneeID    *primitive.ObjectID
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
	Status        *string
	ImageURL      *string
}

// Update applies a partial update in a single write and returns the task
// as stored afterwards. When in.Status is set, the update filter also
// requires callerID to be the task's current assignee, so a request that
// both reassigns the task and moves its status applies as one document
// write or not at all; the filter sees the pre-update assignee, which is
// who held the task when the request was authorized.
//
// Returns mongo.ErrNoDocuments if the task is absent, and ErrNotAssignee
// when a status change is requested by a caller who does not hold the
// assignment at write time.
func (s *Store) Update(ctx context.Context, id, callerID primitive.ObjectID, in TaskUpdate) (*models.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}

	if in.Title != nil {
		title := normalize.Name(*in.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		set["title"] = title
	}
	if in.Description != nil {
		set["description"] = htmlsanitize.Sanitize(*in.Description)
	}
	if in.ClearAssignee {
		unset["assignee_id"] = ""
	} else if in.AssigneeID != nil {
		set["assignee_id"] = *in.AssigneeID
	}
	if in.ClearDueDate {
		unset["due_date"] = ""
	} else if in.DueDate != nil {
		set["due_date"] = *in.DueDate
	}
	if in.Status != nil {
		if !models.IsValidStatus(*in.Status) {
			return nil, ErrBadStatus
		}
		set["status"] = *in.Status
	}
	if in.ImageURL != nil {
		set["image_url"] = *in.ImageURL
	}

	filter := bson.M{"_id": id}
	if in.Status != nil {
		filter["assignee_id"] = callerID
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var updated models.Task
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments || in.Status == nil {
		return nil, err
	}

	// No match with the assignee guard in play: distinguish a missing
	// task from a caller who no longer holds the assignment.
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrNotAssignee
}

// SetStatus moves the task to status, but only if callerID is the
// current assignee. The assignee check rides in the update filter, so
// a concurrent reassignment cannot slip a stale caller's write through:
// either the filter matches the live document or the caller loses.
//
// Returns mongo.ErrNoDocuments if the task is absent and ErrNotAssignee
// if it exists but the caller no longer holds the assignment.
func (s *Store) SetStatus(ctx context.Context, id, callerID primitive.ObjectID, status string) (*models.Task, error) {
	if !models.IsValidStatus(status) {
		return nil, ErrBadStatus
	}

	filter := bson.M{"_id": id, "assignee_id": callerID}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}

	var updated models.Task
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// No match: distinguish a missing task from a caller who is not
	// (or is no longer) the assignee.
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrNotAssignee
}
