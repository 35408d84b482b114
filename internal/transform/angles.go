package transform

import "math"

// AscensionToRadians converts right ascension in hours, minutes and seconds
// (as published by HORIZONS) to radians.
func AscensionToRadians(hours, minutes, seconds float64) float64 {
	turns := hours/24 + minutes/1440 + seconds/86400
	return turns * 2 * math.Pi
}

// DeclinationToRadians converts declination in degrees, arcminutes and
// arcseconds to radians. Minutes and seconds carry the sign of the degree
// field, including a negative zero ("-00 30 00" is -0.5 degrees).
func DeclinationToRadians(degrees, minutes, seconds float64) float64 {
	var turns float64
	if math.Signbit(degrees) {
		turns = degrees/360 - minutes/21600 - seconds/1296000
	} else {
		turns = degrees/360 + minutes/21600 + seconds/1296000
	}
	return turns * 2 * math.Pi
}
