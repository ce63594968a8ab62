package database

import (
	"context"
	"fmt"
	"github.com/gaussfff/momitroll/migration"
	"github.com/pkg/errors"
	"time"
)

var (
	ErrMigrationAlreadyExists = errors.New("migration already exists in changelog")
	ErrMigrationNotFound      = errors.New("migration not found in changelog")
)

const DefaultChangelogCollection = "_changelog"

type (
	SortKey   string
	SortOrder int
)

const (
	SortByName      SortKey = "name"
	SortByAppliedAt SortKey = "appliedAt"

	Ascending  SortOrder = 1
	Descending SortOrder = -1
)

// Plan narrows the records an up run goes through
type Plan struct {
	Steps       int
	OnlyPending bool
}

// Changelog owns the audit collection that records the state of every migration
type Changelog interface {
	EnsureSchema(ctx context.Context) (bool, error)
	Exists(ctx context.Context) (bool, error)
	Insert(ctx context.Context, r migration.Record) error
	FindOrderedByName(ctx context.Context, ascending bool) (migration.Records, error)
	FindOneByStatus(ctx context.Context, s migration.Status, key SortKey, order SortOrder) (*migration.Record, error)
	UpdateStatus(ctx context.Context, name string, s migration.Status, appliedAt *time.Time, description *string) error
	Delete(ctx context.Context, name string) error
	Count(ctx context.Context) (int64, error)
}

// Executor runs commands in order and stops at the first failure, nothing is undone
type Executor interface {
	Execute(ctx context.Context, commands []migration.Command) error
}

// CommandError points at the command that the database rejected
type CommandError struct {
	Index int
	Err   error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command #%d failed: %s", e.Index, e.Err.Error())
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func (e *CommandError) Cause() error {
	return e.Err
}

// ScheduleForUp selects, in name order, the records an up run has to go through.
// Without OnlyPending every record is scheduled, applied ones included.
func ScheduleForUp(records migration.Records, p Plan) migration.Records {
	var scheduled migration.Records

	for i := range records {
		if p.OnlyPending && records[i].IsApplied() {
			continue
		}

		if p.Steps != 0 && len(scheduled) >= p.Steps {
			break
		}

		scheduled = append(scheduled, records[i])
	}

	return scheduled
}
