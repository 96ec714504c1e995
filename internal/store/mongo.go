package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nhle/medreminder/internal/model"
)

// MongoStore implements the Store interface over a MongoDB collection.
// Documents use the field names of the existing reminder_db.reminders
// collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

type reminderDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Dosage   string             `bson:"dosage"`
	Time     string             `bson:"time"`
	Repeat   string             `bson:"repeat"`
	Interval int                `bson:"interval,omitempty"`
	Notified bool               `bson:"notified"`
	Taken    bool               `bson:"taken"`
	Enabled  *bool              `bson:"enabled,omitempty"`
}

// NewMongoStore connects to uri and pings the server before returning.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Create(ctx context.Context, r model.Reminder) (string, error) {
	doc := reminderDoc{
		Name:     r.Name,
		Dosage:   r.Dosage,
		Time:     model.FormatDue(r.DueAt),
		Repeat:   string(r.Repeat),
		Notified: r.Notified,
		Taken:    r.Taken,
		Enabled:  &r.Enabled,
	}
	if r.Repeat == model.RepeatCustom {
		doc.Interval = r.IntervalDays
	}

	res, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("creating reminder: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("creating reminder: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s *MongoStore) Update(ctx context.Context, id string, f Fields) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}

	set := bson.M{}
	if f.Name != nil {
		set["name"] = *f.Name
	}
	if f.Dosage != nil {
		set["dosage"] = *f.Dosage
	}
	if f.DueAt != nil {
		set["time"] = model.FormatDue(*f.DueAt)
	}
	if f.Repeat != nil {
		set["repeat"] = string(*f.Repeat)
	}
	if f.IntervalDays != nil {
		set["interval"] = *f.IntervalDays
	}
	if f.Notified != nil {
		set["notified"] = *f.Notified
	}
	if f.Taken != nil {
		set["taken"] = *f.Taken
	}
	if f.Enabled != nil {
		set["enabled"] = *f.Enabled
	}

	filter := bson.M{"_id": oid}
	if len(set) == 0 {
		count, err := s.collection.CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("updating reminder %s: %w", id, err)
		}
		if count == 0 {
			return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
		}
		return nil
	}

	res, err := s.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("updating reminder %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting reminder %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]model.Reminder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reminderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding reminders: %w", err)
	}

	reminders := make([]model.Reminder, 0, len(docs))
	for _, d := range docs {
		r, err := d.toModel()
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*model.Reminder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}

	var doc reminderDoc
	err = s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting reminder %s: %w", id, err)
	}

	r, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *MongoStore) MarkNotified(ctx context.Context, id string, dueAt time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	filter := bson.M{
		"_id":      oid,
		"time":     model.FormatDue(dueAt),
		"notified": bson.M{"$ne": true},
		"taken":    bson.M{"$ne": true},
		"enabled":  bson.M{"$ne": false},
	}
	res, err := s.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"notified": true}})
	if err != nil {
		return false, fmt.Errorf("marking reminder %s notified: %w", id, err)
	}
	return res.ModifiedCount > 0, nil
}

func (d reminderDoc) toModel() (model.Reminder, error) {
	dueAt, err := model.ParseDue(d.Time)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("decoding reminder %s: %w", d.ID.Hex(), err)
	}

	repeat, err := model.ParseRepeat(d.Repeat)
	if err != nil {
		repeat = model.RepeatOnce
	}

	// Documents written before the enabled flag existed are enabled.
	enabled := d.Enabled == nil || *d.Enabled

	interval := d.Interval
	if repeat == model.RepeatCustom && interval < 1 {
		interval = 1
	}

	return model.Reminder{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Dosage:       d.Dosage,
		DueAt:        dueAt,
		Repeat:       repeat,
		IntervalDays: interval,
		Notified:     d.Notified,
		Taken:        d.Taken,
		Enabled:      enabled,
	}, nil
}
