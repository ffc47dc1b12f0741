package archive

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transitlive/transitlive/pkg/database"
	"github.com/transitlive/transitlive/pkg/transit"
)

// Archiver persists each vehicle snapshot into MongoDB so position history
// outlives the in-memory state. Records are upserted on their composite ID,
// so a vehicle that keeps reporting just refreshes its document.
type Archiver struct {
	collectionName string
}

func NewArchiver() *Archiver {
	return &Archiver{
		collectionName: "vehicle_positions",
	}
}

func (a *Archiver) WriteSnapshot(snapshot map[string]*transit.VehicleRecord) {
	if len(snapshot) == 0 {
		return
	}

	var operations []mongo.WriteModel

	for _, record := range snapshot {
		bsonRep, _ := bson.Marshal(bson.M{"$set": record})
		updateModel := mongo.NewUpdateOneModel()
		updateModel.SetFilter(bson.M{"compositeid": record.CompositeID})
		updateModel.SetUpdate(bsonRep)
		updateModel.SetUpsert(true)

		operations = append(operations, updateModel)
	}

	collection := database.GetCollection(a.collectionName)

	startTime := time.Now()
	_, err := collection.BulkWrite(context.Background(), operations, &options.BulkWriteOptions{})

	if err != nil {
		log.Error().Err(err).Msg("Failed to bulk write vehicle positions")
		return
	}

	log.Debug().Int("Length", len(operations)).Str("Time", time.Now().Sub(startTime).String()).Msg("Archived vehicle snapshot")
}
