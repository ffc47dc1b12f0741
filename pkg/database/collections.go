package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createVehiclePositionsIndexes()
}

func createVehiclePositionsIndexes() {
	vehiclePositionsCollection := GetCollection("vehicle_positions")
	_, err := vehiclePositionsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "compositeid", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "physicalid", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "line", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "lastseen", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(24 * 3600), // Expire after 24 hours
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
