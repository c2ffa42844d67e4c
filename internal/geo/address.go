package geo

import "strings"

// AddressFormat documents the expected shape of stored addresses
const AddressFormat = "Building/Establishment Name, Street Name, Barangay/Area/District, City/Municipality, Province/Metropolitan Area, Country"

// barangayCoordinates maps known San Juan barangays to their coordinates.
// Worker profiles inside the service area get their location from this table.
var barangayCoordinates = map[string]Coordinate{
	"San Juan Greenhills":     {Lat: 14.602981736177803, Lng: 121.04488737237482},
	"San Juan Addition Hills": {Lat: 14.593957651465185, Lng: 121.03816375432932},
	"Corazon de Jesus":        {Lat: 14.606833931096597, Lng: 121.03067168045362},
	"West Crame":              {Lat: 14.607717930795932, Lng: 121.04981118308083},
	"West Greenhills":         {Lat: 14.598770424566561, Lng: 121.04580245503976},
	"San Juan Pinaglabanan":   {Lat: 14.605104730989897, Lng: 121.0288131464939},
	"Balong-Bato":             {Lat: 14.609072024777793, Lng: 121.02585726853202},
	"F. Manalo":               {Lat: 14.598387248539703, Lng: 121.02525322515011},
	"San Juan del Monte":      {Lat: 14.59865706629644, Lng: 121.03040301434575},
}

// IsValidAddressFormat reports whether an address has at least the five
// comma-separated parts the format requires.
func IsValidAddressFormat(address string) bool {
	if strings.TrimSpace(address) == "" {
		return false
	}
	return len(strings.Split(address, ",")) >= 5
}

// ExtractBarangay returns the barangay component (third part) of an address
func ExtractBarangay(address string) string {
	if strings.TrimSpace(address) == "" {
		return ""
	}
	parts := strings.Split(address, ",")
	if len(parts) >= 3 {
		return strings.TrimSpace(parts[2])
	}
	return ""
}

// CoordinatesForBarangay looks up the coordinates of a known barangay
func CoordinatesForBarangay(barangay string) (Coordinate, bool) {
	coord, ok := barangayCoordinates[barangay]
	return coord, ok
}

// CoordinatesForAddress resolves a full address to coordinates. It reports
// false when the address is malformed or the barangay is outside the
// service area.
func CoordinatesForAddress(address string) (Coordinate, bool) {
	if !IsValidAddressFormat(address) {
		return Coordinate{}, false
	}
	return CoordinatesForBarangay(ExtractBarangay(address))
}
