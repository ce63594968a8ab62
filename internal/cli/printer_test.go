package cli

import (
	"bytes"
	"github.com/gaussfff/momitroll/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
)

func TestPrinter_Status(t *testing.T) {
	appliedAt := time.Date(2020, 8, 8, 14, 32, 47, 123000000, time.UTC)
	description := "add index on users.email"

	records := migration.Records{
		{Name: "1596897168_add_index", Status: migration.Applied, AppliedAt: &appliedAt, Description: &description},
		{Name: "1596897167_seed", Status: migration.Pending},
	}

	buf := &bytes.Buffer{}
	NewPrinter(buf, false).Status(records)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name: 1596897168_add_index, applied at: 2020-08-08 14:32:47.123 UTC, status: applied, description: add index on users.email", lines[0])
	assert.Equal(t, "name: 1596897167_seed, applied at: <not applied>, status: pending, description: <empty>", lines[1])
}

func TestPrinter_StatusWithColors(t *testing.T) {
	buf := &bytes.Buffer{}
	NewPrinter(buf, true).Status(migration.Records{{Name: "1596897167_seed", Status: migration.Pending}})

	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "1596897167_seed")
}

func TestPrinter_Version(t *testing.T) {
	buf := &bytes.Buffer{}
	NewPrinter(buf, false).Version()

	assert.Equal(t, "momitroll v."+Version+"\n", buf.String())
}

func TestPrinter_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	NewPrinter(buf, false).Info()

	out := buf.String()
	assert.Contains(t, out, "Repository: "+Repository)
	assert.Contains(t, out, "v. "+Version)
	assert.Equal(t, len(logo)+2, strings.Count(out, "\n"))
}
