package migration

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"testing"
)

func Test_ContentCanBeParsed(t *testing.T) {
	t.Run("empty commands", func(t *testing.T) {
		c, err := Parse([]byte(`{"description": "nothing to do", "commands": []}`))
		require.NoError(t, err)
		assert.Equal(t, "nothing to do", c.Description)
		assert.Len(t, c.Commands, 0)
	})

	t.Run("commands keep their key order", func(t *testing.T) {
		raw := `{
			"description": "create users",
			"commands": [
				{"create": "users", "capped": false},
				{"createIndexes": "users", "indexes": [{"key": {"email": 1}, "name": "email_1", "unique": true}]}
			]
		}`

		c, err := Parse([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, "create users", c.Description)
		require.Len(t, c.Commands, 2)

		assert.Equal(t, "create", c.Commands[0][0].Key)
		assert.Equal(t, "users", c.Commands[0][0].Value)
		assert.Equal(t, "capped", c.Commands[0][1].Key)

		assert.Equal(t, "createIndexes", c.Commands[1][0].Key)
		assert.Equal(t, "indexes", c.Commands[1][1].Key)
		_, ok := c.Commands[1][1].Value.(bson.A)
		assert.True(t, ok, "nested arrays should stay arrays")
	})

	t.Run("field order of the file does not matter", func(t *testing.T) {
		c, err := Parse([]byte(`{"commands": [{"ping": 1}], "description": "ping"}`))
		require.NoError(t, err)
		assert.Equal(t, "ping", c.Description)
		require.Len(t, c.Commands, 1)
		assert.Equal(t, Command{{Key: "ping", Value: int32(1)}}, c.Commands[0])
	})
}

func Test_MalformedContentIsRejected(t *testing.T) {
	tt := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `description: foo`},
		{name: "top level array", raw: `[{"ping": 1}]`},
		{name: "missing description", raw: `{"commands": []}`},
		{name: "description is not a string", raw: `{"description": 12, "commands": []}`},
		{name: "description is null", raw: `{"description": null, "commands": []}`},
		{name: "missing commands", raw: `{"description": "foo"}`},
		{name: "commands is a string", raw: `{"description": "foo", "commands": "drop users"}`},
		{name: "commands is an object", raw: `{"description": "foo", "commands": {"ping": 1}}`},
		{name: "command is not an object", raw: `{"description": "foo", "commands": [{"ping": 1}, "drop"]}`},
		{name: "command is an array", raw: `{"description": "foo", "commands": [[{"ping": 1}]]}`},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse([]byte(tc.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedContent))
			assert.Nil(t, c)
		})
	}
}
