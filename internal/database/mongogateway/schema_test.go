package mongogateway

import (
	"github.com/gaussfff/momitroll/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"testing"
)

func Test_ChangelogValidator(t *testing.T) {
	v := changelogValidator()
	require.Len(t, v, 1)
	assert.Equal(t, "$jsonSchema", v[0].Key)

	schema := v[0].Value.(bson.D).Map()
	assert.Equal(t, bson.A{"name", "status"}, schema["required"])

	props := schema["properties"].(bson.D).Map()
	for _, field := range []string{"name", "status", "appliedAt", "description", "checksum"} {
		assert.Contains(t, props, field)
	}

	status := props["status"].(bson.D).Map()
	assert.Equal(t, bson.A{"pending", "applied"}, status["enum"])
}

func Test_SortBy(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "name", Value: 1}}, sortBy(database.SortByName, database.Ascending))
	assert.Equal(t,
		bson.D{{Key: "appliedAt", Value: -1}, {Key: "name", Value: -1}},
		sortBy(database.SortByAppliedAt, database.Descending),
	)
	assert.Equal(t,
		bson.D{{Key: "appliedAt", Value: 1}, {Key: "name", Value: 1}},
		sortBy(database.SortByAppliedAt, database.Ascending),
	)
}

func Test_NewGatewayDefaultsCollection(t *testing.T) {
	assert.Equal(t, database.DefaultChangelogCollection, NewGateway(nil, "").Collection())
	assert.Equal(t, "_changelog_custom", NewGateway(nil, "_changelog_custom").Collection())
}
