// Package pipeline orchestrates the load→extract→transform→re-encode
// sequence for a single image. It owns the metadata snapshot for the
// current image, the display resource lifecycle, and the ordering
// guarantee that metadata extraction completes before the pixel
// transform is dispatched.
package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"pixelkeep/core"
	"pixelkeep/core/exifio"
	"pixelkeep/core/pngchunk"
)

// DefaultQuality is the JPEG re-encode quality used when Options.Quality
// is zero.
const DefaultQuality = 92

// Transform is the opaque pixel transform: frame in, rendered surface
// out. The pipeline never inspects what it does to the pixels.
type Transform func(ctx context.Context, kind Kind, frame image.Image) (image.Image, error)

// Display receives the finished resource for presentation. The previous
// resource is revoked by the pipeline around each rebind; a Display
// must not hold on to revoked handles.
type Display interface {
	Bind(res *Resource)
}

// Options configures a Pipeline.
type Options struct {
	// AutoAction, when set, dispatches the transform automatically
	// after extraction on every load (unless the load opts out).
	AutoAction Kind
	// Quality is the JPEG re-encode quality, 1–100. Zero selects
	// DefaultQuality.
	Quality int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// LoadOptions controls a single source load.
type LoadOptions struct {
	// PreserveMetadata enables PNG text and EXIF extraction so the
	// output carries the source's metadata.
	PreserveMetadata bool
	// SkipAutoAction suppresses the configured auto transform for
	// this load only.
	SkipAutoAction bool
	// OnComplete, when set, is delivered the terminal outcome exactly
	// once, on success or failure.
	OnComplete CompletionFunc
}

// Result is the outcome of a completed load or transform.
type Result struct {
	Resource    *Resource
	Snapshot    *core.Snapshot
	Transformed bool
}

// Pipeline sequences image loads and transforms. All exported methods
// are safe for concurrent use; a new load supersedes any in-flight
// operation, and a transform during an in-flight operation is refused.
type Pipeline struct {
	transform Transform
	display   Display
	opts      Options
	log       *slog.Logger
	registry  *Registry

	mu         sync.Mutex
	generation uint64
	state      State
	snapshot   *core.Snapshot
	frame      image.Image
	current    *Resource
}

// New builds a Pipeline around the given opaque transform. display may
// be nil for headless use.
func New(transform Transform, display Display, opts Options) *Pipeline {
	if opts.Quality <= 0 {
		opts.Quality = DefaultQuality
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		transform: transform,
		display:   display,
		opts:      opts,
		log:       log,
		registry:  NewRegistry(),
		state:     StateIdle,
	}
}

// State returns the pipeline's current state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// CurrentFormat returns the container format of the current image.
func (p *Pipeline) CurrentFormat() core.Format {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshot == nil {
		return ""
	}
	return p.snapshot.Format
}

// CurrentMetadata returns the snapshot for the current image, or nil
// when nothing is loaded.
func (p *Pipeline) CurrentMetadata() *core.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// CurrentResource returns the live display resource, or nil.
func (p *Pipeline) CurrentResource() *Resource {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Registry exposes the resource registry, mainly for lifecycle checks.
func (p *Pipeline) Registry() *Registry { return p.registry }

// LoadSource runs the full sequence for a new source image: reset the
// snapshot, sniff the format, extract metadata if requested, decode,
// optionally run the configured auto transform, re-encode with the
// metadata reattached, and rebind the display resource.
//
// Starting a new load invalidates any in-flight operation: the older
// operation's continuations find their token stale and drop out without
// touching pipeline state.
func (p *Pipeline) LoadSource(ctx context.Context, data []byte, opts LoadOptions) (*Result, error) {
	gen := p.beginLoad()
	completion := newOneShot(opts.OnComplete)

	snap := &core.Snapshot{Format: core.DetectFormat(data)}
	p.log.Debug("source load started", "generation", gen, "format", snap.Format, "bytes", len(data))

	// PNG text lives in the raw chunk stream; read it before decode.
	if opts.PreserveMetadata && snap.Format == core.FormatPNG {
		p.setState(gen, StateExtracting)
		snap.TextEntries = pngchunk.Decode(data)
	}

	frame, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		ferr := core.ErrDecodeFailed.WithCause(errors.Wrap(err, "decode source image"))
		p.fail(gen, ferr)
		completion.deliver(nil, ferr)
		return nil, ferr
	}

	if opts.PreserveMetadata && snap.Format == core.FormatJPEG {
		p.setState(gen, StateExtracting)
		snap.ExifTags = exifio.Extract(data)
	}

	if !p.publish(gen, snap, frame) {
		completion.deliver(nil, core.ErrSuperseded)
		return nil, core.ErrSuperseded
	}

	out := data
	transformed := false
	if kind := p.opts.AutoAction; kind != "" && !opts.SkipAutoAction {
		// Extraction has fully resolved by this point; the transform
		// is only ever dispatched after it.
		var surface image.Image
		out, surface, err = p.runTransform(ctx, gen, kind, frame, snap)
		if err != nil {
			p.fail(gen, err)
			completion.deliver(nil, err)
			return nil, err
		}
		if !p.retainFrame(gen, surface) {
			completion.deliver(nil, core.ErrSuperseded)
			return nil, core.ErrSuperseded
		}
		transformed = true
	}

	res := p.rebind(gen, out)
	if res == nil {
		completion.deliver(nil, core.ErrSuperseded)
		return nil, core.ErrSuperseded
	}

	result := &Result{Resource: res, Snapshot: snap, Transformed: transformed}
	p.log.Debug("source load complete", "generation", gen, "resource", res.ID(), "transformed", transformed)
	completion.deliver(result, nil)
	return result, nil
}

// ApplyTransform runs the opaque transform against the current image
// and rebinds the display resource with the re-encoded, metadata-
// reinjected output. It follows the same leg as the auto action but is
// entered from Ready.
func (p *Pipeline) ApplyTransform(ctx context.Context, kind Kind) (*Result, error) {
	p.mu.Lock()
	if p.state.busy() {
		p.mu.Unlock()
		return nil, core.ErrBusy
	}
	if p.frame == nil || p.snapshot == nil {
		p.mu.Unlock()
		return nil, core.ErrNoImage
	}
	gen := p.generation
	frame := p.frame
	snap := p.snapshot
	p.state = StateTransforming
	p.mu.Unlock()

	out, surface, err := p.runTransform(ctx, gen, kind, frame, snap)
	if err != nil {
		p.fail(gen, err)
		return nil, err
	}
	if !p.retainFrame(gen, surface) {
		return nil, core.ErrSuperseded
	}

	res := p.rebind(gen, out)
	if res == nil {
		return nil, core.ErrSuperseded
	}
	return &Result{Resource: res, Snapshot: snap, Transformed: true}, nil
}

// runTransform dispatches the opaque transform, re-encodes its surface
// to the snapshot's original format, and reinjects the snapshot's
// metadata through the matching codec path.
func (p *Pipeline) runTransform(ctx context.Context, gen uint64, kind Kind, frame image.Image, snap *core.Snapshot) ([]byte, image.Image, error) {
	p.setState(gen, StateTransforming)

	surface, err := p.transform(ctx, kind, frame)
	if err != nil {
		return nil, nil, core.ErrTransformFailed.WithCause(err)
	}
	if surface == nil {
		return nil, nil, core.ErrTransformFailed.WithCause(errors.New("transform produced no surface"))
	}

	encoded, err := encodeFrame(surface, snap.Format, p.opts.Quality)
	if err != nil {
		return nil, nil, core.ErrEncodeFailed.WithCause(err)
	}

	// Injection failures are recovered inside the codecs; worst case
	// the output simply loses its metadata.
	switch snap.Format {
	case core.FormatPNG:
		encoded = pngchunk.Encode(encoded, snap.TextEntries)
	case core.FormatJPEG:
		encoded = exifio.Inject(encoded, snap.ExifTags)
	}
	return encoded, surface, nil
}

func encodeFrame(frame image.Image, format core.Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case core.FormatPNG:
		if err := png.Encode(&buf, frame); err != nil {
			return nil, errors.Wrap(err, "encode png")
		}
	default:
		if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: quality}); err != nil {
			return nil, errors.Wrap(err, "encode jpeg")
		}
	}
	return buf.Bytes(), nil
}

// beginLoad starts a new generation. The snapshot slot is reset
// unconditionally, before any extraction, even if extraction will be
// skipped.
func (p *Pipeline) beginLoad() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.snapshot = &core.Snapshot{}
	p.frame = nil
	p.state = StateLoading
	return p.generation
}

// setState moves the pipeline to state unless the token is stale.
func (p *Pipeline) setState(gen uint64, state State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return
	}
	p.state = state
}

// publish installs the populated snapshot and decoded frame, unless a
// newer load superseded this one.
func (p *Pipeline) publish(gen uint64, snap *core.Snapshot, frame image.Image) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return false
	}
	p.snapshot = snap
	p.frame = frame
	return true
}

// retainFrame replaces the current frame with the transform's surface
// so a follow-up transform operates on what is displayed.
func (p *Pipeline) retainFrame(gen uint64, surface image.Image) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return false
	}
	p.frame = surface
	return true
}

// rebind mints a resource over the encoded output, hands it to the
// display, and revokes the superseded resource. Returns nil when the
// token is stale; nothing is minted or revoked in that case.
func (p *Pipeline) rebind(gen uint64, encoded []byte) *Resource {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return nil
	}
	res := p.registry.Mint(encoded)
	prev := p.current
	p.current = res
	p.state = StateReady
	display := p.display
	p.mu.Unlock()

	if display != nil {
		display.Bind(res)
	}
	if prev != nil {
		prev.Revoke()
	}
	return res
}

// fail records a terminal failure for the current generation. The
// processing state is cleared; the pipeline starts cleanly on the next
// load.
func (p *Pipeline) fail(gen uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return
	}
	p.state = StateError
	p.log.Error("pipeline operation failed", "generation", gen, "err", err)
}
