package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// withOwner appends the stages that populate ownerRef from the users
// collection. The password hash is dropped inside the pipeline.
func withOwner(match bson.M, tail ...bson.D) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "owner"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "ownerRef"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$ownerRef"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "ownerRef.password", Value: 0},
		}}},
	}
	return append(pipeline, tail...)
}
