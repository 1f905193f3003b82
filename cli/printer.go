package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"pixelkeep/core"
)

// Printer renders a metadata snapshot for the terminal.
type Printer struct {
	JSON   bool
	Writer io.Writer
}

// NewPrinter creates a Printer for the given output mode.
func NewPrinter(jsonMode bool, w io.Writer) *Printer {
	return &Printer{JSON: jsonMode, Writer: w}
}

// PrintSnapshot renders the snapshot grouped by metadata source.
func (p *Printer) PrintSnapshot(path string, snap *core.Snapshot) {
	if p.JSON {
		p.printJSON(path, snap)
		return
	}
	p.printText(path, snap)
}

func (p *Printer) printText(path string, snap *core.Snapshot) {
	fmt.Fprintf(p.Writer, "File  : %s\n", path)
	fmt.Fprintf(p.Writer, "Format: %s\n", snap.Format)
	if !snap.HasMetadata() {
		fmt.Fprintln(p.Writer, "(no metadata found)")
		return
	}
	fmt.Fprintln(p.Writer)

	if len(snap.ExifTags) > 0 {
		fmt.Fprintln(p.Writer, "── EXIF ──")
		names := make([]string, 0, len(snap.ExifTags))
		for name := range snap.ExifTags {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(p.Writer, "  %-30s %s\n", name+":", snap.ExifTags[name])
		}
	}

	if snap.TextEntries.Len() > 0 {
		fmt.Fprintln(p.Writer, "── PNG text ──")
		for _, keyword := range snap.TextEntries.Keys() {
			text, _ := snap.TextEntries.Get(keyword)
			fmt.Fprintf(p.Writer, "  %-30s %s\n", keyword+":", text)
		}
	}
}

func (p *Printer) printJSON(path string, snap *core.Snapshot) {
	text := make(map[string]string, snap.TextEntries.Len())
	for _, keyword := range snap.TextEntries.Keys() {
		text[keyword], _ = snap.TextEntries.Get(keyword)
	}
	doc := struct {
		File   string            `json:"file"`
		Format core.Format       `json:"format"`
		Exif   map[string]string `json:"exif,omitempty"`
		Text   map[string]string `json:"pngText,omitempty"`
	}{File: path, Format: snap.Format, Exif: snap.ExifTags, Text: text}

	enc := json.NewEncoder(p.Writer)
	enc.SetIndent("", "  ")
	enc.Encode(doc)
}
