package mongogateway

import (
	"context"
	"github.com/gaussfff/momitroll/internal/database"
	"github.com/gaussfff/momitroll/internal/logger"
	"github.com/gaussfff/momitroll/migration"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"time"
)

const uniqueNameIndex = "name_unique"

// Gateway keeps the changelog in a mongo collection and runs migration commands
// against the same database
type Gateway struct {
	lg         logger.Logger
	db         *mongo.Database
	collection string
}

var _ database.Changelog = (*Gateway)(nil)
var _ database.Executor = (*Gateway)(nil)

func NewGateway(db *mongo.Database, collection string) *Gateway {
	if collection == "" {
		collection = database.DefaultChangelogCollection
	}

	return &Gateway{
		lg:         &logger.NullLogger{},
		db:         db,
		collection: collection,
	}
}

func (g *Gateway) SetLogger(lg logger.Logger) {
	g.lg = lg
}

func (g *Gateway) Collection() string {
	return g.collection
}

func (g *Gateway) changelog() *mongo.Collection {
	return g.db.Collection(g.collection)
}

// EnsureSchema creates the changelog collection with its validator and a unique
// index on name. An existing collection is left as is and false is returned,
// its index is still ensured.
func (g *Gateway) EnsureSchema(ctx context.Context) (bool, error) {
	exists, err := g.Exists(ctx)
	if err != nil {
		return false, err
	}

	if !exists {
		opts := options.CreateCollection().SetValidator(changelogValidator())
		if err := g.db.CreateCollection(ctx, g.collection, opts); err != nil {
			return false, errors.Wrapf(err, "could not create changelog collection [%s]", g.collection)
		}

		g.lg.Debugf("changelog collection [%s] created", g.collection)
	}

	if err := g.ensureNameIndex(ctx); err != nil {
		return false, err
	}

	return !exists, nil
}

// ensureNameIndex is a no-op when the index already exists with the same keys and options
func (g *Gateway) ensureNameIndex(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(uniqueNameIndex),
	}

	if _, err := g.changelog().Indexes().CreateOne(ctx, idx); err != nil {
		return errors.Wrapf(err, "could not create unique index on [%s]", g.collection)
	}

	g.lg.Debugf("index [%s] on [%s] is in place", uniqueNameIndex, g.collection)

	return nil
}

func (g *Gateway) Exists(ctx context.Context) (bool, error) {
	names, err := g.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: g.collection}})
	if err != nil {
		return false, errors.Wrap(err, "could not list collections")
	}

	for i := range names {
		if names[i] == g.collection {
			return true, nil
		}
	}

	return false, nil
}

func (g *Gateway) Insert(ctx context.Context, r migration.Record) error {
	if _, err := g.changelog().InsertOne(ctx, r); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Wrapf(database.ErrMigrationAlreadyExists, "[%s]", r.Name)
		}

		return errors.Wrapf(err, "could not insert migration [%s]", r.Name)
	}

	return nil
}

func (g *Gateway) FindOrderedByName(ctx context.Context, ascending bool) (migration.Records, error) {
	order := database.Descending
	if ascending {
		order = database.Ascending
	}

	opts := options.Find().SetSort(sortBy(database.SortByName, order))
	cur, err := g.changelog().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "could not read changelog")
	}

	var result migration.Records
	if err := cur.All(ctx, &result); err != nil {
		return nil, errors.Wrap(err, "could not decode changelog")
	}

	return result, nil
}

func (g *Gateway) FindOneByStatus(
	ctx context.Context,
	s migration.Status,
	key database.SortKey,
	order database.SortOrder,
) (*migration.Record, error) {
	opts := options.FindOne().SetSort(sortBy(key, order))

	var r migration.Record
	err := g.changelog().FindOne(ctx, bson.D{{Key: "status", Value: s}}, opts).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}

		return nil, errors.Wrapf(err, "could not find %s migration", s)
	}

	return &r, nil
}

// UpdateStatus sets status, appliedAt and, when given, description in one update
func (g *Gateway) UpdateStatus(
	ctx context.Context,
	name string,
	s migration.Status,
	appliedAt *time.Time,
	description *string,
) error {
	set := bson.D{
		{Key: "status", Value: s},
		{Key: "appliedAt", Value: appliedAt},
	}

	if description != nil {
		set = append(set, bson.E{Key: "description", Value: *description})
	}

	res, err := g.changelog().UpdateOne(ctx, bson.D{{Key: "name", Value: name}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return errors.Wrapf(err, "could not update migration [%s]", name)
	}

	if res.MatchedCount == 0 {
		return errors.Wrapf(database.ErrMigrationNotFound, "[%s]", name)
	}

	return nil
}

func (g *Gateway) Delete(ctx context.Context, name string) error {
	res, err := g.changelog().DeleteOne(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return errors.Wrapf(err, "could not delete migration [%s]", name)
	}

	if res.DeletedCount == 0 {
		return errors.Wrapf(database.ErrMigrationNotFound, "[%s]", name)
	}

	return nil
}

func (g *Gateway) Count(ctx context.Context) (int64, error) {
	n, err := g.changelog().CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, errors.Wrap(err, "could not count migrations")
	}

	return n, nil
}

// Execute passes every command to RunCommand, in order, and stops at the first rejection.
// Commands that already ran are not undone.
func (g *Gateway) Execute(ctx context.Context, commands []migration.Command) error {
	for i := range commands {
		cmd := bson.D(commands[i])
		g.logCommand(cmd)

		if err := g.db.RunCommand(ctx, cmd).Err(); err != nil {
			return &database.CommandError{Index: i, Err: err}
		}
	}

	return nil
}

func (g *Gateway) logCommand(cmd bson.D) {
	b, err := bson.MarshalExtJSON(cmd, false, false)
	if err != nil {
		g.lg.Debugf("could not render command: %s", err.Error())
		return
	}

	g.lg.Command(string(b))
}

// sortBy orders by key, records applied at the same instant are ordered by name
func sortBy(key database.SortKey, order database.SortOrder) bson.D {
	result := bson.D{{Key: string(key), Value: int(order)}}
	if key != database.SortByName {
		result = append(result, bson.E{Key: string(database.SortByName), Value: int(order)})
	}

	return result
}
