// Package exifio extracts EXIF tags from JPEG bytes and injects a
// rebuilt EXIF segment into a JPEG byte stream. Extraction delegates to
// goexif; injection builds IFDs with go-exif and splices the segment
// with go-jpeg-image-structure.
//
// Both directions are best-effort: extraction resolves to nil rather
// than erroring, and injection returns the input unchanged on any
// failure. Metadata loss is acceptable; aborting the pipeline is not.
package exifio

import (
	"bytes"
	"strings"

	exifbuild "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Extract walks the EXIF tags of a JPEG byte stream into a name→value
// mapping. Returns nil when the stream has no readable EXIF data.
func Extract(jpegData []byte) map[string]string {
	x, err := exif.Decode(bytes.NewReader(jpegData))
	if err != nil {
		return nil
	}
	tags := make(map[string]string)
	x.Walk(tagWalker{tags: tags})
	if len(tags) == 0 {
		return nil
	}
	return tags
}

type tagWalker struct {
	tags map[string]string
}

func (w tagWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	val := tag.String()
	// ASCII values come back JSON-quoted.
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
	}
	w.tags[string(name)] = val
	return nil
}

// Inject encodes the whitelisted subset of tags into a binary EXIF
// segment and splices it into the JPEG stream after SOI. Unrecognized
// or unparseable tags are dropped silently. The original bytes are
// returned unchanged when there is nothing to write or when the
// encode/insert step fails.
func Inject(jpegData []byte, tags map[string]string) (out []byte) {
	out = jpegData
	if len(tags) == 0 {
		return out
	}
	// The IFD encoder raises panics on malformed values; recover and
	// keep the original bytes.
	defer func() {
		if r := recover(); r != nil {
			out = jpegData
		}
	}()

	rootIb, wrote := buildIfds(tags)
	if !wrote {
		return out
	}

	jmp := jpegstructure.NewJpegMediaParser()
	intfc, err := jmp.ParseBytes(jpegData)
	if err != nil {
		return out
	}
	segments, ok := intfc.(*jpegstructure.SegmentList)
	if !ok {
		return out
	}
	if err := segments.SetExif(rootIb); err != nil {
		return out
	}

	var b bytes.Buffer
	if err := segments.Write(&b); err != nil {
		return out
	}
	return b.Bytes()
}

// buildIfds populates the three IFD groups (root/0th, Exif, GPS) from
// the whitelist and reports whether any tag was written.
func buildIfds(tags map[string]string) (*exifbuild.IfdBuilder, bool) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, false
	}
	ti := exifbuild.NewTagIndex()
	rootIb := exifbuild.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity,
		exifcommon.EncodeDefaultByteOrder)

	wrote := false
	for name, value := range tags {
		spec, ok := whitelist[name]
		if !ok {
			continue
		}
		ib, err := ifdFor(rootIb, spec.ifdPath)
		if err != nil {
			continue
		}
		if writeTag(ib, spec, value, tags) {
			wrote = true
		}
	}
	return rootIb, wrote
}

func ifdFor(rootIb *exifbuild.IfdBuilder, path string) (*exifbuild.IfdBuilder, error) {
	if path == ifdRoot {
		return rootIb, nil
	}
	return exifbuild.GetOrCreateIbFromRootIb(rootIb, path)
}

func writeTag(ib *exifbuild.IfdBuilder, spec tagSpec, value string, all map[string]string) bool {
	switch spec.kind {
	case kindASCII:
		return ib.AddStandardWithName(spec.name, value) == nil
	case kindRational:
		r, ok := parseRational(value)
		if !ok {
			return false
		}
		return ib.AddStandardWithName(spec.name, []exifcommon.Rational{r}) == nil
	case kindShort:
		n, ok := parseUint16(value)
		if !ok {
			return false
		}
		return ib.AddStandardWithName(spec.name, []uint16{n}) == nil
	case kindGPS:
		dms, ref, ok := parseGPSCoordinate(value, spec.name == "GPSLatitude")
		if !ok {
			return false
		}
		if ib.AddStandardWithName(spec.name, dms) != nil {
			return false
		}
		// A bare coordinate is ambiguous without its hemisphere. An
		// explicit ref from the source snapshot wins over the one
		// derived from the coordinate's sign.
		if explicit := strings.TrimSpace(all[spec.name+"Ref"]); explicit != "" {
			ref = explicit
		}
		ib.AddStandardWithName(spec.name+"Ref", ref)
		return true
	}
	return false
}
