package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// campJoinPipeline matches orders and joins each one to its camp. The stored
// campId is a hex string, so it is converted before the lookup; a malformed
// or dangling reference yields no camp and the unwind drops the order.
func campJoinPipeline(match bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "campObjectId", Value: bson.D{{Key: "$convert", Value: bson.D{
				{Key: "input", Value: "$campId"},
				{Key: "to", Value: "objectId"},
				{Key: "onError", Value: nil},
				{Key: "onNull", Value: nil},
			}}}},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CampsCollection},
			{Key: "localField", Value: "campObjectId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "camps"},
		}}},
		{{Key: "$unwind", Value: "$camps"}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "name", Value: "$camps.name"},
			{Key: "image", Value: "$camps.image"},
			{Key: "participant", Value: "$camps.participant"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "camps", Value: 0},
			{Key: "campObjectId", Value: 0},
		}}},
	}
}

// orderDay is the calendar day an order was placed. Orders written before
// createdAt existed fall back to the timestamp inside their ObjectID.
var orderDay = bson.D{{Key: "$dateToString", Value: bson.D{
	{Key: "format", Value: "%Y-%m-%d"},
	{Key: "date", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$createdAt", bson.D{{Key: "$toDate", Value: "$_id"}}}}}},
}}}

// dailyStatsPipeline groups every order by day, oldest first
func dailyStatsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: orderDay},
			{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "quantity", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$price"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "date", Value: "$_id"},
			{Key: "orders", Value: 1},
			{Key: "quantity", Value: 1},
			{Key: "revenue", Value: 1},
		}}},
	}
}

// orderTotalsPipeline sums order count and revenue across the collection
func orderTotalsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalOrders", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalRevenue", Value: bson.D{{Key: "$sum", Value: "$price"}}},
		}}},
	}
}
