package momitroll

import (
	"context"
	"github.com/gaussfff/momitroll/internal/database"
	"github.com/gaussfff/momitroll/internal/logger"
	"github.com/gaussfff/momitroll/internal/source"
	"github.com/gaussfff/momitroll/migration"
	"github.com/pkg/errors"
	"time"
)

var (
	ErrGatewayNotInitialized = errors.New("database gateway has not been initialized")
	ErrNotInitialized        = errors.New("migrations collection does not exist, run init first")
)

type CloserFunc func() error

type loggerSetter interface {
	SetLogger(logger.Logger)
}

// Controller runs the migration lifecycle: init, create, up, down, status and drop
type Controller struct {
	lg        logger.Logger
	changelog database.Changelog
	executor  database.Executor
	store     source.Store
	clock     migration.ClockFunc
	closerFns []CloserFunc
}

// New creates a controller from option callbacks. A changelog and an executor
// are required, the local ./migrations folder is used when no store is given.
func New(opts ...OptionFunc) (*Controller, CloserFunc, error) {
	c := new(Controller)
	c.lg = &logger.NullLogger{}
	c.clock = time.Now

	for _, oFunc := range opts {
		if err := oFunc(c); err != nil {
			return nil, nil, err
		}
	}

	if c.changelog == nil || c.executor == nil {
		return nil, nil, ErrGatewayNotInitialized
	}

	if c.store == nil {
		c.store = source.NewLocalFolder(source.DefaultMigrationsFolder)
	}

	for _, dep := range []interface{}{c.changelog, c.executor} {
		if ls, ok := dep.(loggerSetter); ok {
			ls.SetLogger(c.lg)
		}
	}

	return c, c.close, nil
}

func (c *Controller) close() error {
	var result error
	for i := len(c.closerFns) - 1; i >= 0; i-- {
		if err := c.closerFns[i](); err != nil && result == nil {
			result = err
		}
	}

	return result
}

// Init creates the migrations folder and the changelog collection,
// both are reported but left alone when they already exist
func (c *Controller) Init(ctx context.Context) error {
	created, err := c.store.EnsureRoot()
	if err != nil {
		return err
	}

	if created {
		c.lg.Successf("migration directory created")
	} else {
		c.lg.Warnf("migration directory already exists")
	}

	created, err = c.changelog.EnsureSchema(ctx)
	if err != nil {
		return err
	}

	if created {
		c.lg.Successf("migrations collection created")
	} else {
		c.lg.Warnf("migrations collection already exists")
	}

	return nil
}

// Create scaffolds a new migration unit and records it as pending.
// The files stay on disk if the record cannot be inserted.
func (c *Controller) Create(ctx context.Context, userName string) (string, error) {
	if err := c.checkInitialized(ctx); err != nil {
		return "", err
	}

	name, err := migration.NewName(c.clock, userName)
	if err != nil {
		return "", err
	}

	if err := c.store.CreateScaffold(name); err != nil {
		return "", err
	}

	if err := c.changelog.Insert(ctx, migration.NewRecord(name)); err != nil {
		return "", errors.Wrapf(err, "files for [%s] were created but the record was not", name)
	}

	c.lg.Successf("migration created: %s", name)

	return name, nil
}

// Up goes through the changelog in name order and applies every scheduled unit.
// Units applied before the failing one keep their new state.
func (c *Controller) Up(ctx context.Context, cfs ...ActionConfigurator) (migration.Records, error) {
	act := new(Action)
	for _, f := range cfs {
		f(act)
	}

	if err := c.checkInitialized(ctx); err != nil {
		return nil, err
	}

	records, err := c.changelog.FindOrderedByName(ctx, true)
	if err != nil {
		return nil, err
	}

	scheduled := database.ScheduleForUp(records, database.Plan{Steps: act.steps, OnlyPending: act.onlyPending})
	if len(scheduled) == 0 {
		c.lg.Warnf("no migrations to apply")
		return nil, nil
	}

	var applied migration.Records
	for i := range scheduled {
		c.lg.Debugf("applying migration: %s", scheduled[i].Name)

		content, err := c.load(scheduled[i].Name, migration.Up)
		if err != nil {
			return applied, err
		}

		if err := c.executor.Execute(ctx, content.Commands); err != nil {
			return applied, errors.Wrapf(err, "could not apply migration [%s]", scheduled[i].Name)
		}

		now := c.now()
		description := content.Description
		if err := c.changelog.UpdateStatus(ctx, scheduled[i].Name, migration.Applied, &now, &description); err != nil {
			return applied, err
		}

		c.lg.Successf("applied migration: %s", scheduled[i].Name)

		r := scheduled[i]
		r.Status, r.AppliedAt, r.Description = migration.Applied, &now, &description
		applied = append(applied, r)
	}

	return applied, nil
}

// Down reverts the most recently applied migration, the description is left as it was.
// No applied migration is not an error, nil is returned.
func (c *Controller) Down(ctx context.Context) (*migration.Record, error) {
	if err := c.checkInitialized(ctx); err != nil {
		return nil, err
	}

	r, err := c.changelog.FindOneByStatus(ctx, migration.Applied, database.SortByAppliedAt, database.Descending)
	if err != nil {
		return nil, err
	}

	if r == nil {
		c.lg.Warnf("can't find last applied migration")
		return nil, nil
	}

	content, err := c.load(r.Name, migration.Down)
	if err != nil {
		return nil, err
	}

	if err := c.executor.Execute(ctx, content.Commands); err != nil {
		return nil, errors.Wrapf(err, "could not roll back migration [%s]", r.Name)
	}

	if err := c.changelog.UpdateStatus(ctx, r.Name, migration.Pending, nil, nil); err != nil {
		return nil, err
	}

	c.lg.Successf("rolled back migration: %s", r.Name)

	r.Status, r.AppliedAt = migration.Pending, nil
	return r, nil
}

// Status lists every record, most recent first
func (c *Controller) Status(ctx context.Context) (migration.Records, error) {
	if err := c.checkInitialized(ctx); err != nil {
		return nil, err
	}

	count, err := c.changelog.Count(ctx)
	if err != nil {
		return nil, err
	}

	if count == 0 {
		c.lg.Warnf("no migrations found")
		return migration.Records{}, nil
	}

	return c.changelog.FindOrderedByName(ctx, false)
}

// Drop removes the most recent pending migration: the record first, then its folder.
// A failed folder removal leaves the files without a record.
func (c *Controller) Drop(ctx context.Context) (*migration.Record, error) {
	if err := c.checkInitialized(ctx); err != nil {
		return nil, err
	}

	r, err := c.changelog.FindOneByStatus(ctx, migration.Pending, database.SortByName, database.Descending)
	if err != nil {
		return nil, err
	}

	if r == nil {
		c.lg.Warnf("no pending migrations found")
		return nil, nil
	}

	if err := c.changelog.Delete(ctx, r.Name); err != nil {
		return nil, err
	}

	if err := c.store.Remove(r.Name); err != nil {
		return nil, errors.Wrapf(err, "record of [%s] was deleted but its folder was not", r.Name)
	}

	c.lg.Successf("dropped migration: %s", r.Name)

	return r, nil
}

func (c *Controller) load(name string, d migration.Direction) (*migration.Content, error) {
	raw, err := c.store.Read(name, d)
	if err != nil {
		return nil, err
	}

	content, err := migration.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "migration [%s] %s file", name, d)
	}

	return content, nil
}

func (c *Controller) checkInitialized(ctx context.Context) error {
	exists, err := c.changelog.Exists(ctx)
	if err != nil {
		return err
	}

	if !exists {
		return ErrNotInitialized
	}

	return nil
}

// now is truncated to what the database can store
func (c *Controller) now() time.Time {
	return c.clock().UTC().Truncate(time.Millisecond)
}
