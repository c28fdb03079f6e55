package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sun1tar/taskmanager/internal/models"
)

const (
	usersCollection = "users"
	listsCollection = "lists"
	tasksCollection = "tasks"
)

// MongoStore - основной драйвер: документная БД
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

type listDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	UserID    primitive.ObjectID `bson:"user"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Starred     bool               `bson:"starred"`
	RemindAt    *time.Time         `bson:"remindAt,omitempty"`
	ListID      primitive.ObjectID `bson:"list"`
	UserID      primitive.ObjectID `bson:"user"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// NewMongoStore подключается к MongoDB, проверяет соединение и создаёт индексы
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := &MongoStore{client: client, db: client.Database(database), now: time.Now}
	if err = s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		listsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		tasksCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "list", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "starred", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (s *MongoStore) Users() UserRepository { return mongoUsers{s, s.db.Collection(usersCollection)} }
func (s *MongoStore) Lists() ListRepository { return mongoLists{s, s.db.Collection(listsCollection)} }
func (s *MongoStore) Tasks() TaskRepository { return mongoTasks{s, s.db.Collection(tasksCollection)} }

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// objectIDs разбирает идентификаторы; некорректный id равносилен отсутствию записи
// stamp - текущее время с точностью BSON (миллисекунды)
func (s *MongoStore) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// bsonTime приводит время к точности, с которой его вернёт MongoDB
func bsonTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC().Truncate(time.Millisecond)
	return &v
}

func objectIDs(hexes ...string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, len(hexes))
	for i, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, ErrNotFound
		}
		out[i] = id
	}
	return out, nil
}

func mapMongoError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

// --- users ------------------------------------------------------------------

type mongoUsers struct {
	s    *MongoStore
	coll *mongo.Collection
}

func (d userDoc) model() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r mongoUsers) Create(ctx context.Context, user *models.User) error {
	now := r.s.stamp()
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoError(err)
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r mongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.model(), nil
}

func (r mongoUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	ids, err := objectIDs(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": ids[0]})
}

func (r mongoUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r mongoUsers) UpdateProfile(ctx context.Context, id string, username, email *string) (*models.User, error) {
	ids, err := objectIDs(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": r.s.stamp()}
	if username != nil {
		set["username"] = *username
	}
	if email != nil {
		set["email"] = *email
	}

	var doc userDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": ids[0]}, bson.M{"$set": set}, returnAfter).Decode(&doc)
	if err != nil {
		return nil, mapMongoError(err)
	}
	return doc.model(), nil
}

func (r mongoUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	ids, err := objectIDs(id)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": ids[0]},
		bson.M{"$set": bson.M{"password": passwordHash, "updatedAt": r.s.stamp()}})
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r mongoUsers) Delete(ctx context.Context, id string) error {
	ids, err := objectIDs(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": ids[0]})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- lists ------------------------------------------------------------------

type mongoLists struct {
	s    *MongoStore
	coll *mongo.Collection
}

func (d listDoc) model() *models.List {
	return &models.List{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		UserID:    d.UserID.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r mongoLists) List(ctx context.Context, ownerID string) ([]*models.List, error) {
	ids, err := objectIDs(ownerID)
	if err != nil {
		return []*models.List{}, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"user": ids[0]}, newestFirst)
	if err != nil {
		return nil, err
	}
	var docs []listDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	lists := make([]*models.List, 0, len(docs))
	for _, d := range docs {
		lists = append(lists, d.model())
	}
	return lists, nil
}

func (r mongoLists) Get(ctx context.Context, ownerID, id string) (*models.List, error) {
	ids, err := objectIDs(id, ownerID)
	if err != nil {
		return nil, err
	}

	var doc listDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": ids[0], "user": ids[1]}).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.model(), nil
}

func (r mongoLists) Create(ctx context.Context, list *models.List) error {
	ids, err := objectIDs(list.UserID)
	if err != nil {
		return err
	}

	now := r.s.stamp()
	doc := listDoc{ID: primitive.NewObjectID(), Name: list.Name, UserID: ids[0], CreatedAt: now, UpdatedAt: now}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoError(err)
	}

	list.ID = doc.ID.Hex()
	list.CreatedAt = now
	list.UpdatedAt = now
	return nil
}

func (r mongoLists) Rename(ctx context.Context, ownerID, id, name string) (*models.List, error) {
	ids, err := objectIDs(id, ownerID)
	if err != nil {
		return nil, err
	}

	var doc listDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": ids[0], "user": ids[1]},
		bson.M{"$set": bson.M{"name": name, "updatedAt": r.s.stamp()}},
		returnAfter,
	).Decode(&doc)
	if err != nil {
		return nil, mapMongoError(err)
	}
	return doc.model(), nil
}

func (r mongoLists) Delete(ctx context.Context, ownerID, id string) error {
	ids, err := objectIDs(id, ownerID)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": ids[0], "user": ids[1]})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- tasks ------------------------------------------------------------------

type mongoTasks struct {
	s    *MongoStore
	coll *mongo.Collection
}

func (d taskDoc) model() *models.Task {
	return &models.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Starred:     d.Starred,
		RemindAt:    d.RemindAt,
		ListID:      d.ListID.Hex(),
		UserID:      d.UserID.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r mongoTasks) find(ctx context.Context, filter bson.M) ([]*models.Task, error) {
	cursor, err := r.coll.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	var docs []taskDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.model())
	}
	return tasks, nil
}

func (r mongoTasks) List(ctx context.Context, ownerID, listID string) ([]*models.Task, error) {
	ids, err := objectIDs(ownerID, listID)
	if err != nil {
		return []*models.Task{}, nil
	}
	return r.find(ctx, bson.M{"user": ids[0], "list": ids[1]})
}

func (r mongoTasks) Starred(ctx context.Context, ownerID string) ([]*models.Task, error) {
	ids, err := objectIDs(ownerID)
	if err != nil {
		return []*models.Task{}, nil
	}
	return r.find(ctx, bson.M{"user": ids[0], "starred": true})
}

func (r mongoTasks) Create(ctx context.Context, task *models.Task) error {
	ids, err := objectIDs(task.UserID, task.ListID)
	if err != nil {
		return err
	}

	now := r.s.stamp()
	doc := taskDoc{
		ID:          primitive.NewObjectID(),
		Title:       task.Title,
		Description: task.Description,
		Starred:     task.Starred,
		RemindAt:    bsonTime(task.RemindAt),
		UserID:      ids[0],
		ListID:      ids[1],
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoError(err)
	}

	task.ID = doc.ID.Hex()
	task.RemindAt = doc.RemindAt
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r mongoTasks) Update(ctx context.Context, ownerID, listID, id string, patch models.TaskPatch) (*models.Task, error) {
	ids, err := objectIDs(id, ownerID, listID)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": r.s.stamp()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Starred != nil {
		set["starred"] = *patch.Starred
	}
	if patch.RemindAt != nil && !patch.ClearRemindAt {
		set["remindAt"] = *bsonTime(patch.RemindAt)
	}
	update := bson.M{"$set": set}
	if patch.ClearRemindAt {
		update["$unset"] = bson.M{"remindAt": ""}
	}

	var doc taskDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": ids[0], "user": ids[1], "list": ids[2]}, update, returnAfter,
	).Decode(&doc)
	if err != nil {
		return nil, mapMongoError(err)
	}
	return doc.model(), nil
}

func (r mongoTasks) Delete(ctx context.Context, ownerID, listID, id string) error {
	ids, err := objectIDs(id, ownerID, listID)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": ids[0], "user": ids[1], "list": ids[2]})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r mongoTasks) DeleteByList(ctx context.Context, ownerID, listID string) (int64, error) {
	ids, err := objectIDs(ownerID, listID)
	if err != nil {
		return 0, nil
	}

	res, err := r.coll.DeleteMany(ctx, bson.M{"user": ids[0], "list": ids[1]})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
