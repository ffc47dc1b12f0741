package transit

import "strings"

type VehicleType string

const (
	VehicleTypeTram    VehicleType = "tram"
	VehicleTypeBus     VehicleType = "bus"
	VehicleTypeTrolley VehicleType = "trolley"
	VehicleTypeUnknown VehicleType = "unknown"
)

// ResolveVehicleType maps the feed's type fields onto our closed vehicle type set.
// The primary field wins, the secondary hint is only consulted when the primary
// doesn't match anything. Feeds have been seen sending either so we can't trust
// just one of them. Anything unrecognised degrades to unknown rather than erroring.
func ResolveVehicleType(primary string, secondary string) VehicleType {
	for _, value := range []string{primary, secondary} {
		switch strings.ToLower(value) {
		case "tram":
			return VehicleTypeTram
		case "bus":
			return VehicleTypeBus
		case "trolley":
			return VehicleTypeTrolley
		}
	}

	return VehicleTypeUnknown
}
