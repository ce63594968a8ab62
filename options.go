package momitroll

import (
	"context"
	"github.com/gaussfff/momitroll/internal/database"
	"github.com/gaussfff/momitroll/internal/database/mongogateway"
	"github.com/gaussfff/momitroll/internal/logger"
	"github.com/gaussfff/momitroll/internal/source"
	"github.com/gaussfff/momitroll/migration"
	"go.mongodb.org/mongo-driver/mongo"
)

type (
	OptionFunc      func(*Controller) error
	MongoOptionFunc func(*mongoOptions)

	mongoOptions struct {
		changelogCollection string
		closer              mongogateway.CloserFunc
	}
)

// UseMongo keeps the changelog in db and runs migration commands against it
func UseMongo(db *mongo.Database, options ...MongoOptionFunc) OptionFunc {
	return func(c *Controller) error {
		opts := &mongoOptions{changelogCollection: database.DefaultChangelogCollection}
		for _, oFunc := range options {
			oFunc(opts)
		}

		gateway := mongogateway.NewGateway(db, opts.changelogCollection)
		c.changelog = gateway
		c.executor = gateway

		if opts.closer != nil {
			closer := opts.closer
			c.closerFns = append(c.closerFns, func() error {
				return closer(context.Background())
			})
		}

		return nil
	}
}

func WithChangelogCollection(collection string) MongoOptionFunc {
	return func(o *mongoOptions) {
		o.changelogCollection = collection
	}
}

// WithMongoCloser hands the client disconnect over to the controller closer
func WithMongoCloser(closer mongogateway.CloserFunc) MongoOptionFunc {
	return func(o *mongoOptions) {
		o.closer = closer
	}
}

func UseChangelog(changelog database.Changelog) OptionFunc {
	return func(c *Controller) error {
		c.changelog = changelog
		return nil
	}
}

func UseExecutor(executor database.Executor) OptionFunc {
	return func(c *Controller) error {
		c.executor = executor
		return nil
	}
}

func UseLocalFolder(folder string) OptionFunc {
	return func(c *Controller) error {
		c.store = source.NewLocalFolder(folder)
		return nil
	}
}

func UseStore(store source.Store) OptionFunc {
	return func(c *Controller) error {
		c.store = store
		return nil
	}
}

func UseColorLogger(p logger.Printer, printCommands, printDebug bool) OptionFunc {
	return func(c *Controller) error {
		c.lg = logger.NewColorLogger(p, printCommands, printDebug)
		return nil
	}
}

func UseLogger(p logger.Printer, printCommands, printDebug bool) OptionFunc {
	return func(c *Controller) error {
		c.lg = logger.NewBWLogger(p, printCommands, printDebug)
		return nil
	}
}

func WithLogger(lg logger.Logger) OptionFunc {
	return func(c *Controller) error {
		c.lg = lg
		return nil
	}
}

func WithClock(clock migration.ClockFunc) OptionFunc {
	return func(c *Controller) error {
		c.clock = clock
		return nil
	}
}
