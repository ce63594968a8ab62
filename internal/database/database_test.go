package database

import (
	"github.com/gaussfff/momitroll/migration"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestScheduleForUp(t *testing.T) {
	t.Parallel()

	appliedAt := time.Unix(1596899300, 0)
	applied := func(name string) migration.Record {
		return migration.Record{Name: name, Status: migration.Applied, AppliedAt: &appliedAt}
	}

	records := migration.Records{
		applied("1596897167_create_foo"),
		migration.NewRecord("1596899255_create_bar"),
		applied("1596899399_create_baz"),
		migration.NewRecord("1596899500_create_qux"),
	}

	t.Run("it will schedule every record when plan is empty", func(t *testing.T) {
		scheduled := ScheduleForUp(records, Plan{})
		assert.Equal(t, records.Names(), scheduled.Names())
	})

	t.Run("it will schedule only pending records if asked to", func(t *testing.T) {
		scheduled := ScheduleForUp(records, Plan{OnlyPending: true})
		assert.Equal(t, []string{"1596899255_create_bar", "1596899500_create_qux"}, scheduled.Names())
	})

	t.Run("it will limit the scheduled records by steps", func(t *testing.T) {
		scheduled := ScheduleForUp(records, Plan{Steps: 2})
		assert.Equal(t, []string{"1596897167_create_foo", "1596899255_create_bar"}, scheduled.Names())
	})

	t.Run("it will limit pending records by steps", func(t *testing.T) {
		scheduled := ScheduleForUp(records, Plan{Steps: 1, OnlyPending: true})
		require.Len(t, scheduled, 1)
		assert.Equal(t, "1596899255_create_bar", scheduled[0].Name)
	})

	t.Run("it will schedule nothing for no records", func(t *testing.T) {
		assert.Len(t, ScheduleForUp(nil, Plan{Steps: 3}), 0)
	})
}

func TestCommandError(t *testing.T) {
	cause := errors.New("ns not found")
	err := errors.Wrap(&CommandError{Index: 2, Err: cause}, "could not apply [1596897167_create_foo]")

	assert.True(t, errors.Is(err, cause))

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 2, cmdErr.Index)
	assert.Contains(t, err.Error(), "command #2 failed: ns not found")
}
