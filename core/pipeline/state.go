package pipeline

import "sync"

// State tracks where the pipeline is in the load→extract→transform→
// ready sequence.
type State string

const (
	StateIdle         State = "idle"
	StateLoading      State = "loading"
	StateExtracting   State = "extracting"
	StateTransforming State = "transforming"
	StateReady        State = "ready"
	StateError        State = "error"
)

// busy reports whether the state represents an in-flight operation.
func (s State) busy() bool {
	switch s {
	case StateLoading, StateExtracting, StateTransforming:
		return true
	}
	return false
}

// Kind selects the direction of the opaque pixel transform.
type Kind string

const (
	KindEncrypt Kind = "encrypt"
	KindDecrypt Kind = "decrypt"
)

// CompletionFunc receives the terminal outcome of a load. Exactly one
// of result and err is set.
type CompletionFunc func(result *Result, err error)

// oneShot delivers a completion callback at most once, covering both
// the success and the error path. It replaces the null-out-after-use
// handler pattern: a second delivery is structurally impossible.
type oneShot struct {
	once sync.Once
	fn   CompletionFunc
}

func newOneShot(fn CompletionFunc) *oneShot {
	return &oneShot{fn: fn}
}

func (o *oneShot) deliver(result *Result, err error) {
	if o.fn == nil {
		return
	}
	o.once.Do(func() { o.fn(result, err) })
}
