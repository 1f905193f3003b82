// Package pngchunk reads and writes PNG textual metadata at the chunk
// level. It decodes tEXt and iTXt chunks from a raw PNG byte stream and
// encodes keyword→text entries as new tEXt chunks spliced in before the
// first IDAT, without touching any other chunk.
package pngchunk

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"golang.org/x/text/encoding/charmap"

	"pixelkeep/core"
)

const (
	chunkText       = "tEXt"
	chunkIntlText   = "iTXt"
	chunkImageData  = "IDAT"
	chunkImageEnd   = "IEND"
	chunkHeaderSize = 8  // length + type
	chunkOverhead   = 12 // length + type + CRC
	signatureLength = 8
)

// Decode walks the chunk stream and returns the accumulated
// keyword→text entries from tEXt and iTXt chunks.
//
// Extraction is best-effort: nil is returned when data is not a PNG or
// carries no text chunks, and a truncated or malformed chunk layout
// ends the walk with whatever was collected so far. Chunk CRCs are not
// verified.
func Decode(data []byte) *core.TextMap {
	if !core.IsPNG(data) {
		return nil
	}
	entries := core.NewTextMap()
	offset := signatureLength
	for offset+chunkHeaderSize <= len(data) {
		length := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		end := offset + chunkOverhead + length
		if length < 0 || end > len(data) {
			// Declared length runs past the buffer. Stop rather
			// than read out of range; partial results stand.
			break
		}
		typ := string(data[offset+4 : offset+8])
		body := data[offset+8 : offset+8+length]

		switch typ {
		case chunkText:
			decodeText(body, entries)
		case chunkIntlText:
			decodeIntlText(body, entries)
		case chunkImageEnd:
			offset = len(data)
			continue
		}
		offset = end
	}
	if entries.Len() == 0 {
		return nil
	}
	return entries
}

// decodeText splits a tEXt body at its first zero byte into a Latin-1
// keyword and Latin-1 text.
func decodeText(body []byte, entries *core.TextMap) {
	null := bytes.IndexByte(body, 0)
	if null <= 0 {
		return
	}
	keyword := latin1String(body[:null])
	text := ""
	if null+1 <= len(body) {
		text = latin1String(body[null+1:])
	}
	entries.Set(keyword, text)
}

// decodeIntlText parses an iTXt body: null-terminated keyword, one-byte
// compression flag, one-byte compression method, null-terminated
// language tag, null-terminated translated keyword, then UTF-8 text.
// Compressed payloads are skipped.
func decodeIntlText(body []byte, entries *core.TextMap) {
	null := bytes.IndexByte(body, 0)
	if null <= 0 {
		return
	}
	keyword := latin1String(body[:null])
	rest := body[null+1:]
	if len(rest) < 2 {
		return
	}
	compressed := rest[0] != 0
	rest = rest[2:] // compression flag + compression method
	for i := 0; i < 2; i++ {
		n := bytes.IndexByte(rest, 0)
		if n < 0 {
			return
		}
		rest = rest[n+1:]
	}
	if compressed {
		return
	}
	entries.Set(keyword, string(rest))
}

// Encode returns a copy of pngData with one tEXt chunk per entry
// spliced in immediately before the first IDAT chunk, preserving entry
// order. The input is returned unchanged when there is nothing to
// write or no insertion point can be located. All original chunks keep
// their order and bytes.
func Encode(pngData []byte, entries *core.TextMap) []byte {
	if entries.Len() == 0 || !core.IsPNG(pngData) {
		return pngData
	}
	insertAt := imageDataOffset(pngData)
	if insertAt < 0 {
		return pngData
	}

	var chunks bytes.Buffer
	for _, keyword := range entries.Keys() {
		text, _ := entries.Get(keyword)
		chunks.Write(buildTextChunk(keyword, text))
	}

	out := make([]byte, 0, len(pngData)+chunks.Len())
	out = append(out, pngData[:insertAt]...)
	out = append(out, chunks.Bytes()...)
	out = append(out, pngData[insertAt:]...)
	return out
}

// imageDataOffset scans chunk headers from the end of the signature and
// returns the byte offset of the first IDAT chunk, or -1. Chunk bodies
// are skipped over, not copied.
func imageDataOffset(data []byte) int {
	offset := signatureLength
	for offset+chunkHeaderSize <= len(data) {
		length := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		if string(data[offset+4:offset+8]) == chunkImageData {
			return offset
		}
		next := offset + chunkOverhead + length
		if length < 0 || next > len(data) {
			return -1
		}
		offset = next
	}
	return -1
}

// buildTextChunk assembles a self-contained tEXt chunk:
// u32be length | "tEXt" | keyword || 0x00 || text | u32be CRC32.
// The CRC covers type and data with the standard reversed polynomial.
func buildTextChunk(keyword, text string) []byte {
	kw := latin1Bytes(keyword)
	txt := latin1Bytes(text)

	payload := make([]byte, 0, len(kw)+1+len(txt))
	payload = append(payload, kw...)
	payload = append(payload, 0x00)
	payload = append(payload, txt...)

	chunk := make([]byte, chunkOverhead+len(payload))
	binary.BigEndian.PutUint32(chunk[0:4], uint32(len(payload)))
	copy(chunk[4:8], chunkText)
	copy(chunk[8:], payload)

	crc := crc32.NewIEEE()
	crc.Write(chunk[4 : 8+len(payload)])
	binary.BigEndian.PutUint32(chunk[8+len(payload):], crc.Sum32())
	return chunk
}

// latin1String decodes ISO 8859-1 bytes into a string.
func latin1String(b []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// latin1Bytes encodes a string as ISO 8859-1 where representable and
// falls back to its raw UTF-8 bytes otherwise.
func latin1Bytes(s string) []byte {
	out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}
