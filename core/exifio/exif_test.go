package exifio

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func makeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 0x80, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode fixture jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestInjectExtractRoundTrip(t *testing.T) {
	src := makeJPEG(t)
	tags := map[string]string{
		"Make":             "Canon",
		"Model":            "EOS R5",
		"Artist":           "Alice",
		"DateTimeOriginal": "2024:06:01 12:00:00",
		"ExposureTime":     "1/250",
		"ISO":              "400",
	}

	out := Inject(src, tags)
	if bytes.Equal(out, src) {
		t.Fatal("inject should have changed the stream")
	}

	got := Extract(out)
	if got == nil {
		t.Fatal("extract returned nil after inject")
	}

	checks := map[string]string{
		"Make":             "Canon",
		"Model":            "EOS R5",
		"Artist":           "Alice",
		"DateTimeOriginal": "2024:06:01 12:00:00",
		"ExposureTime":     "1/250",
		"ISOSpeedRatings":  "400",
	}
	for name, want := range checks {
		if got[name] != want {
			t.Errorf("%s = %q, want %q", name, got[name], want)
		}
	}
}

func TestInjectEmptyTagsIsIdentity(t *testing.T) {
	src := makeJPEG(t)
	if out := Inject(src, nil); !bytes.Equal(out, src) {
		t.Error("nil tags should return input unchanged")
	}
	if out := Inject(src, map[string]string{}); !bytes.Equal(out, src) {
		t.Error("empty tags should return input unchanged")
	}
}

func TestInjectDropsUnrecognizedTags(t *testing.T) {
	src := makeJPEG(t)
	out := Inject(src, map[string]string{
		"NotARealTag":   "value",
		"AnotherBogus":  "thing",
		"ImageWidthXYZ": "100",
	})
	if !bytes.Equal(out, src) {
		t.Error("only-unrecognized tags should leave the stream unchanged")
	}
}

func TestInjectDropsUnparseableValues(t *testing.T) {
	src := makeJPEG(t)
	out := Inject(src, map[string]string{
		"ExposureTime": "very fast",
		"ISO":          "not a number",
	})
	if !bytes.Equal(out, src) {
		t.Error("unparseable-only tags should leave the stream unchanged")
	}
}

func TestInjectGarbageInputIsRecovered(t *testing.T) {
	garbage := []byte("this is not a jpeg stream at all")
	out := Inject(garbage, map[string]string{"Make": "Canon"})
	if !bytes.Equal(out, garbage) {
		t.Error("failed inject should return input unchanged")
	}
}

func TestInjectGPSCoordinates(t *testing.T) {
	src := makeJPEG(t)
	out := Inject(src, map[string]string{
		"GPSLatitude":  "40.446195",
		"GPSLongitude": "-79.982195",
	})
	if bytes.Equal(out, src) {
		t.Fatal("GPS inject should have changed the stream")
	}

	got := Extract(out)
	if got == nil {
		t.Fatal("extract returned nil")
	}
	if _, ok := got["GPSLatitude"]; !ok {
		t.Error("GPSLatitude missing from extracted tags")
	}
	if got["GPSLatitudeRef"] != "N" {
		t.Errorf("GPSLatitudeRef = %q, want N", got["GPSLatitudeRef"])
	}
	if got["GPSLongitudeRef"] != "W" {
		t.Errorf("GPSLongitudeRef = %q, want W", got["GPSLongitudeRef"])
	}
}

func TestExtractNoExif(t *testing.T) {
	if got := Extract(makeJPEG(t)); got != nil {
		t.Errorf("plain jpeg should extract nil, got %v", got)
	}
	if got := Extract([]byte("not an image")); got != nil {
		t.Errorf("garbage should extract nil, got %v", got)
	}
	if got := Extract(nil); got != nil {
		t.Errorf("nil input should extract nil, got %v", got)
	}
}

func TestParseRational(t *testing.T) {
	tests := []struct {
		in       string
		num, den uint32
		ok       bool
	}{
		{"1/250", 1, 250, true},
		{"50", 50, 1, true},
		{"2.8", 28000, 10000, true},
		{"0/0", 0, 0, false},
		{"abc", 0, 0, false},
		{"-1/2", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, ok := parseRational(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (r.Numerator != tt.num || r.Denominator != tt.den) {
				t.Errorf("got %d/%d, want %d/%d", r.Numerator, r.Denominator, tt.num, tt.den)
			}
		})
	}
}

func TestParseGPSCoordinateForms(t *testing.T) {
	dms, ref, ok := parseGPSCoordinate(`["40/1","26/1","4678/100"]`, true)
	if !ok {
		t.Fatal("rational-list form should parse")
	}
	if ref != "N" {
		t.Errorf("ref = %q, want N", ref)
	}
	if len(dms) != 3 || dms[0].Numerator != 40 || dms[1].Numerator != 26 {
		t.Errorf("unexpected dms: %v", dms)
	}

	dms, ref, ok = parseGPSCoordinate("-79.5", false)
	if !ok {
		t.Fatal("decimal form should parse")
	}
	if ref != "W" {
		t.Errorf("ref = %q, want W", ref)
	}
	if dms[0].Numerator != 79 || dms[1].Numerator != 30 {
		t.Errorf("unexpected dms for -79.5: %v", dms)
	}
}
