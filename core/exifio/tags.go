package exifio

import (
	"math"
	"strconv"
	"strings"

	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// IFD paths understood by the go-exif mapping.
const (
	ifdRoot = "IFD"
	ifdExif = "IFD/Exif"
	ifdGPS  = "IFD/GPSInfo"
)

type tagKind int

const (
	kindASCII tagKind = iota
	kindRational
	kindShort
	kindGPS
)

type tagSpec struct {
	name    string // canonical tag name in the encoder's scheme
	ifdPath string
	kind    tagKind
}

// whitelist maps the supported tag names onto the encoder's tag scheme,
// grouped into the three IFD sections. Anything else is dropped on
// injection. "ISO" is accepted as an alias for ISOSpeedRatings, which
// is what the extractor reports.
var whitelist = map[string]tagSpec{
	"Make":      {"Make", ifdRoot, kindASCII},
	"Model":     {"Model", ifdRoot, kindASCII},
	"Software":  {"Software", ifdRoot, kindASCII},
	"DateTime":  {"DateTime", ifdRoot, kindASCII},
	"Artist":    {"Artist", ifdRoot, kindASCII},
	"Copyright": {"Copyright", ifdRoot, kindASCII},

	"DateTimeOriginal":  {"DateTimeOriginal", ifdExif, kindASCII},
	"DateTimeDigitized": {"DateTimeDigitized", ifdExif, kindASCII},
	"ExposureTime":      {"ExposureTime", ifdExif, kindRational},
	"FNumber":           {"FNumber", ifdExif, kindRational},
	"ISO":               {"ISOSpeedRatings", ifdExif, kindShort},
	"ISOSpeedRatings":   {"ISOSpeedRatings", ifdExif, kindShort},
	"FocalLength":       {"FocalLength", ifdExif, kindRational},
	"LensModel":         {"LensModel", ifdExif, kindASCII},

	"GPSLatitude":  {"GPSLatitude", ifdGPS, kindGPS},
	"GPSLongitude": {"GPSLongitude", ifdGPS, kindGPS},
}

// parseRational reads "N/D", a plain integer, or a decimal into an
// unsigned EXIF rational.
func parseRational(s string) (exifcommon.Rational, bool) {
	s = strings.TrimSpace(s)
	if num, den, ok := splitFraction(s); ok {
		return exifcommon.Rational{Numerator: num, Denominator: den}, true
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return exifcommon.Rational{Numerator: uint32(n), Denominator: 1}, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return decimalToRational(f), true
	}
	return exifcommon.Rational{}, false
}

func splitFraction(s string) (uint32, uint32, bool) {
	slash := strings.IndexByte(s, '/')
	if slash <= 0 || slash == len(s)-1 {
		return 0, 0, false
	}
	num, err := strconv.ParseUint(strings.TrimSpace(s[:slash]), 10, 32)
	if err != nil {
		return 0, 0, false
	}
	den, err := strconv.ParseUint(strings.TrimSpace(s[slash+1:]), 10, 32)
	if err != nil || den == 0 {
		return 0, 0, false
	}
	return uint32(num), uint32(den), true
}

func decimalToRational(f float64) exifcommon.Rational {
	const denominator = 10000
	return exifcommon.Rational{
		Numerator:   uint32(math.Round(f * denominator)),
		Denominator: denominator,
	}
}

func parseUint16(s string) (uint16, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

// parseGPSCoordinate reads either a degrees/minutes/seconds rational
// list as the extractor reports it (`["40/1","26/1","4678/100"]`) or a
// signed decimal degree value, and returns the D/M/S rationals plus the
// hemisphere reference.
func parseGPSCoordinate(s string, isLatitude bool) ([]exifcommon.Rational, string, bool) {
	s = strings.TrimSpace(s)
	negative := false

	cleaned := strings.NewReplacer("[", "", "]", "", `"`, "", "'", "").Replace(s)
	parts := strings.Split(cleaned, ",")
	if len(parts) == 3 {
		dms := make([]exifcommon.Rational, 0, 3)
		for _, p := range parts {
			r, ok := parseRational(strings.TrimSpace(p))
			if !ok {
				return nil, "", false
			}
			dms = append(dms, r)
		}
		return dms, hemisphere(isLatitude, negative), true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, "", false
	}
	if f < 0 {
		negative = true
		f = -f
	}
	deg := math.Floor(f)
	rem := (f - deg) * 60
	min := math.Floor(rem)
	sec := (rem - min) * 60

	dms := []exifcommon.Rational{
		{Numerator: uint32(deg), Denominator: 1},
		{Numerator: uint32(min), Denominator: 1},
		{Numerator: uint32(math.Round(sec * 1000)), Denominator: 1000},
	}
	return dms, hemisphere(isLatitude, negative), true
}

func hemisphere(isLatitude, negative bool) string {
	if isLatitude {
		if negative {
			return "S"
		}
		return "N"
	}
	if negative {
		return "W"
	}
	return "E"
}
