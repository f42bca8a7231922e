package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/davicafu/hexaquery/internal/shared/infra/platform/db/mongofilter"
	"github.com/davicafu/hexaquery/internal/shared/query"
	taskDomain "github.com/davicafu/hexaquery/internal/task/domain"
)

// bsonFields traduce los campos del recurso a las claves del documento.
var bsonFields = map[string]string{
	"id":           "_id",
	"assignee_id":  "assigneeId",
	"begin_at":     "beginAt",
	"completed_at": "completedAt",
	"created_at":   "createdAt",
	"updated_at":   "updatedAt",
}

// TaskRepoMongoDB implementa la interfaz TaskRepository para MongoDB.
type TaskRepoMongoDB struct {
	tasksColl  *mongo.Collection
	translator mongofilter.Translator
}

var _ taskDomain.TaskRepository = (*TaskRepoMongoDB)(nil)

// NewTaskRepoMongoDB es el constructor del repositorio.
func NewTaskRepoMongoDB(client *mongo.Client, dbName string) *TaskRepoMongoDB {
	return NewTaskRepoWithCollection(client.Database(dbName).Collection("tasks"))
}

func NewTaskRepoWithCollection(coll *mongo.Collection) *TaskRepoMongoDB {
	return &TaskRepoMongoDB{
		tasksColl:  coll,
		translator: mongofilter.New(taskDomain.TaskTable, bsonFields),
	}
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.
// Los UUID se guardan como string para que los filtros por id comparen texto.

type mongoTask struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	AssigneeID  string     `bson:"assigneeId"`
	Status      string     `bson:"status"`
	Priority    int64      `bson:"priority"`
	BeginAt     *time.Time `bson:"beginAt"`
	CompletedAt *time.Time `bson:"completedAt"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

// --- Escritura ---

func (r *TaskRepoMongoDB) Create(ctx context.Context, t *taskDomain.Task) error {
	if _, err := r.tasksColl.InsertOne(ctx, toMongoTask(t)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return taskDomain.ErrTaskAlreadyExists
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *TaskRepoMongoDB) Update(ctx context.Context, t *taskDomain.Task) error {
	mt := toMongoTask(t)
	res, err := r.tasksColl.ReplaceOne(ctx, bson.M{"_id": mt.ID}, mt)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return taskDomain.ErrTaskNotFound
	}
	return nil
}

// --- Lectura ---

func (r *TaskRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	var mt mongoTask
	err := r.tasksColl.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&mt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, taskDomain.ErrTaskNotFound
		}
		return nil, err
	}
	return fromMongoTask(&mt)
}

// List traduce el scope a filtro y opciones de Find.
func (r *TaskRepoMongoDB) List(ctx context.Context, scope query.Scope, page query.Page) ([]*taskDomain.Task, error) {
	tasks := []*taskDomain.Task{}
	if scope.Empty() {
		return tasks, nil
	}

	filter, err := r.translator.Filter(scope)
	if err != nil {
		return nil, err
	}
	cursor, err := r.tasksColl.Find(ctx, filter, r.translator.FindOptions(scope, page))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var mt mongoTask
		if err := cursor.Decode(&mt); err != nil {
			return nil, err
		}
		t, err := fromMongoTask(&mt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, cursor.Err()
}

// --- Helpers de Mapeo y Conversión ---

func toMongoTask(t *taskDomain.Task) *mongoTask {
	return &mongoTask{
		ID: t.ID.String(), Title: t.Title, Description: t.Description,
		AssigneeID: t.AssigneeID.String(), Status: string(t.Status), Priority: int64(t.Priority),
		BeginAt: t.BeginAt, CompletedAt: t.CompletedAt, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

func fromMongoTask(mt *mongoTask) (*taskDomain.Task, error) {
	id, err := uuid.Parse(mt.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in mongo: %w", err)
	}
	assignee, err := uuid.Parse(mt.AssigneeID)
	if err != nil {
		return nil, fmt.Errorf("invalid assignee UUID in mongo: %w", err)
	}
	return &taskDomain.Task{
		ID: id, Title: mt.Title, Description: mt.Description,
		AssigneeID: assignee, Status: taskDomain.TaskStatus(mt.Status), Priority: int(mt.Priority),
		BeginAt: utc(mt.BeginAt), CompletedAt: utc(mt.CompletedAt),
		CreatedAt: mt.CreatedAt.UTC(), UpdatedAt: mt.UpdatedAt.UTC(),
	}, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
