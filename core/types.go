// Package core defines the shared types, format detection, and error
// taxonomy for the pixelkeep pipeline.
package core

// Snapshot holds the metadata captured for the currently loaded image.
// A new source load always replaces the whole snapshot; fields are never
// merged across images.
type Snapshot struct {
	// Format determines which codec path applies on output.
	Format Format
	// ExifTags maps EXIF tag names to their string values. Nil when the
	// image carried no readable EXIF data.
	ExifTags map[string]string
	// TextEntries holds PNG tEXt/iTXt keyword→text pairs in the order
	// they appeared. Nil when the image carried none.
	TextEntries *TextMap
}

// HasMetadata reports whether the snapshot captured anything worth
// reinjecting on output.
func (s *Snapshot) HasMetadata() bool {
	if s == nil {
		return false
	}
	return len(s.ExifTags) > 0 || s.TextEntries.Len() > 0
}

// TextMap is a keyword→text mapping that preserves insertion order.
// PNG text chunks must be written back in the order they were read.
type TextMap struct {
	keys []string
	vals map[string]string
}

// NewTextMap returns an empty TextMap.
func NewTextMap() *TextMap {
	return &TextMap{vals: make(map[string]string)}
}

// Set stores text under keyword. A keyword seen before keeps its
// original position; only its value is replaced.
func (m *TextMap) Set(keyword, text string) {
	if m.vals == nil {
		m.vals = make(map[string]string)
	}
	if _, ok := m.vals[keyword]; !ok {
		m.keys = append(m.keys, keyword)
	}
	m.vals[keyword] = text
}

// Get returns the text stored under keyword.
func (m *TextMap) Get(keyword string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.vals[keyword]
	return v, ok
}

// Len returns the number of entries. Safe on a nil map.
func (m *TextMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keywords in insertion order.
func (m *TextMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Equal reports whether two maps hold the same entries in the same order.
func (m *TextMap) Equal(other *TextMap) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
		if m.vals[k] != other.vals[k] {
			return false
		}
	}
	return true
}
