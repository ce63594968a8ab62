package mongogateway

import (
	"github.com/gaussfff/momitroll/migration"
	"go.mongodb.org/mongo-driver/bson"
)

// changelogValidator is the $jsonSchema the changelog collection is created with.
// checksum is declared for drift detection but nothing writes it yet.
func changelogValidator() bson.D {
	return bson.D{
		{Key: "$jsonSchema", Value: bson.D{
			{Key: "bsonType", Value: "object"},
			{Key: "required", Value: bson.A{"name", "status"}},
			{Key: "properties", Value: bson.D{
				{Key: "name", Value: bson.D{
					{Key: "bsonType", Value: "string"},
					{Key: "description", Value: "name of migration"},
				}},
				{Key: "checksum", Value: bson.D{
					{Key: "bsonType", Value: bson.A{"int", "null"}},
					{Key: "description", Value: "checksum of migration file, used to check if migration file was changed"},
				}},
				{Key: "appliedAt", Value: bson.D{
					{Key: "bsonType", Value: bson.A{"date", "null"}},
					{Key: "description", Value: "date of when migration was applied"},
				}},
				{Key: "status", Value: bson.D{
					{Key: "bsonType", Value: "string"},
					{Key: "enum", Value: bson.A{migration.Pending.String(), migration.Applied.String()}},
					{Key: "description", Value: "status of migration"},
				}},
				{Key: "description", Value: bson.D{
					{Key: "bsonType", Value: bson.A{"string", "null"}},
					{Key: "description", Value: "description of migration"},
				}},
			}},
		}},
	}
}
