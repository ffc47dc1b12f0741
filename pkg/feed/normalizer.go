package feed

import (
	"time"

	"github.com/transitlive/transitlive/pkg/transit"
)

// Normalize converts one raw feed response into the canonical vehicle map,
// keyed by composite id. The returned map replaces the previous one wholesale -
// a composite id missing from the raw list is gone, even if it was present a
// moment ago. The only carry-over from the previous snapshot is the position of
// a record with the same composite id, kept so renderers can interpolate.
//
// Pure function of its inputs, safe to call from anywhere.
func Normalize(rawVehicles []RawVehicle, previous map[string]*transit.VehicleRecord, now time.Time) map[string]*transit.VehicleRecord {
	vehicles := map[string]*transit.VehicleRecord{}

	for _, rawVehicle := range rawVehicles {
		compositeID := transit.CompositeVehicleID(rawVehicle.VehicleID, rawVehicle.LastStopOrder)

		record := &transit.VehicleRecord{
			CompositeID:   compositeID,
			PhysicalID:    rawVehicle.VehicleID,
			LastStopOrder: rawVehicle.LastStopOrder,

			Latitude:  rawVehicle.Latitude,
			Longitude: rawVehicle.Longitude,

			Line:         rawVehicle.Line,
			LineName:     rawVehicle.LineName,
			Destination:  rawVehicle.Destination,
			Direction:    rawVehicle.Direction,
			DelayMinutes: rawVehicle.DelayMinutes,
			LowFloor:     rawVehicle.LowFloor,
			Operator:     rawVehicle.Operator,
			OnStop:       rawVehicle.OnStop,
			TripID:       rawVehicle.TripID,
			Type:         transit.ResolveVehicleType(rawVehicle.Type, rawVehicle.TypeHint),

			LastSeen: now,
		}

		if previousRecord, exists := previous[compositeID]; exists {
			record.HasPreviousPosition = true
			record.PreviousLatitude = previousRecord.Latitude
			record.PreviousLongitude = previousRecord.Longitude
		}

		vehicles[compositeID] = record
	}

	return vehicles
}
