package main

import (
	"context"
	"hash/crc32"
	"image"

	"golang.org/x/image/draw"

	"pixelkeep/core/pipeline"
)

// ScrambleTransform returns a reversible keyed XOR pixel scramble to
// stand in for an external encrypt/decrypt transform. The keystream is
// its own inverse, so both kinds apply the same operation; running it
// twice with the same key restores the original pixels (modulo any
// lossy re-encode in between).
func ScrambleTransform(key string) pipeline.Transform {
	return func(_ context.Context, _ pipeline.Kind, frame image.Image) (image.Image, error) {
		b := frame.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Copy(dst, image.Point{}, frame, b, draw.Src, nil)

		ks := newKeystream(key)
		px := dst.Pix
		for i := 0; i+3 < len(px); i += 4 {
			k := ks.next()
			px[i+0] ^= byte(k)
			px[i+1] ^= byte(k >> 8)
			px[i+2] ^= byte(k >> 16)
			// alpha stays intact
		}
		return dst, nil
	}
}

// keystream is a xorshift32 generator seeded from the key.
type keystream struct {
	state uint32
}

func newKeystream(key string) *keystream {
	seed := crc32.ChecksumIEEE([]byte(key))
	if seed == 0 {
		seed = 0x9E3779B9
	}
	return &keystream{state: seed}
}

func (k *keystream) next() uint32 {
	k.state ^= k.state << 13
	k.state ^= k.state >> 17
	k.state ^= k.state << 5
	return k.state
}
