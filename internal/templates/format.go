package templates

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// Rupiah formats a price the way id-ID locales do, e.g. Rp15.000.
func Rupiah(v float64) string {
	if v == math.Trunc(v) {
		return idPrinter.Sprintf("Rp%d", int64(v))
	}
	return idPrinter.Sprintf("Rp%v", number.Decimal(v, number.MaxFractionDigits(3)))
}

// ParkingCount caps displayed capacity at "+5".
func ParkingCount(n int) string {
	if n >= 5 {
		return "+5"
	}
	return strconv.Itoa(n)
}

// YesNo renders a boolean amenity.
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Kilometres renders a distance, or "" when unknown.
func Kilometres(d *float64) string {
	if d == nil {
		return ""
	}
	return strconv.FormatFloat(*d, 'f', 1, 64) + " km"
}
