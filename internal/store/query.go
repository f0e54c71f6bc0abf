package store

import "go.mongodb.org/mongo-driver/bson"

// Filter and sort builders are kept as pure functions so the query shapes
// can be asserted without a running server. Timestamps are compared as
// fixed-layout strings, which sort lexicographically in chronological
// order.

func stormFilter(stormID string) bson.D {
	return bson.D{{Key: "storm_id", Value: stormID}}
}

func atOrBeforeFilter(stormID, ts string) bson.D {
	return bson.D{
		{Key: "storm_id", Value: stormID},
		{Key: "timestamp", Value: bson.D{{Key: "$lte", Value: ts}}},
	}
}

func rangeFilter(stormID, start, end string) bson.D {
	return bson.D{
		{Key: "storm_id", Value: stormID},
		{Key: "timestamp", Value: bson.D{
			{Key: "$gte", Value: start},
			{Key: "$lte", Value: end},
		}},
	}
}

func sortByTimestampAsc() bson.D {
	return bson.D{{Key: "timestamp", Value: 1}}
}

func sortByTimestampDesc() bson.D {
	return bson.D{{Key: "timestamp", Value: -1}}
}

func locationIndexKeys() bson.D {
	return bson.D{{Key: "location", Value: "2dsphere"}}
}

func timestampIndexKeys() bson.D {
	return bson.D{{Key: "timestamp", Value: 1}}
}
