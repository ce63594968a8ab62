package migration

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sort"
	"testing"
	"time"
)

func Test_NameCanBeGeneratedFromClockAndUserName(t *testing.T) {
	clock := func() time.Time {
		return time.Unix(1596897167, 0)
	}

	valid := []struct {
		in  string
		out string
	}{
		{in: "alpha", out: "1596897167_alpha"},
		{in: "create_users", out: "1596897167_create_users"},
		{in: "AddUsers", out: "1596897167_AddUsers"},
		{in: "v1.2_add_index", out: "1596897167_v1.2_add_index"},
		{in: "add.index", out: "1596897167_add.index"},
		{in: "Add Users Index", out: "1596897167_Add Users Index"},
		{in: "semi;colon", out: "1596897167_semi;colon"},
	}

	invalid := []string{"", "   ", "..", "../escape", "foo/bar", `foo\bar`, "nul\x00byte"}

	for _, tc := range valid {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			name, err := NewName(clock, tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.out, name)
		})
	}

	for _, in := range invalid {
		in := in
		t.Run("invalid-"+in, func(t *testing.T) {
			name, err := NewName(clock, in)
			assert.True(t, errors.Is(err, ErrInvalidMigrationName))
			assert.Equal(t, "", name)
		})
	}
}

func Test_RecordsCanBeSortedByName(t *testing.T) {
	records := Records{
		NewRecord("1597897177_create_baz"),
		NewRecord("1586897167_create_bar"),
		NewRecord("1596897167_create_foo"),
	}

	sort.Sort(records)

	assert.Equal(t, []string{
		"1586897167_create_bar",
		"1596897167_create_foo",
		"1597897177_create_baz",
	}, records.Names())
}

func Test_NewRecordIsPending(t *testing.T) {
	r := NewRecord("1596897167_alpha")

	assert.Equal(t, Pending, r.Status)
	assert.False(t, r.IsApplied())
	assert.Nil(t, r.AppliedAt)
	assert.Equal(t, "<empty>", r.DescriptionOr("<empty>"))
}

func Test_DirectionFileSuffix(t *testing.T) {
	assert.Equal(t, "_up.json", Up.FileSuffix())
	assert.Equal(t, "_down.json", Down.FileSuffix())
}

func Test_StatusValidity(t *testing.T) {
	assert.True(t, Pending.IsValid())
	assert.True(t, Applied.IsValid())
	assert.False(t, Status("failed").IsValid())
}
