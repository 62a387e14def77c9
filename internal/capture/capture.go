package capture

import (
	"errors"
	"time"
)

// Fatal open errors. The pipeline falls back to block-copy capture when
// duplication cannot be opened; these classify why.
var (
	// ErrNoAdapter means no graphics adapter could be created at all.
	ErrNoAdapter = errors.New("no graphics adapter available")

	// ErrOutputUnavailable means the selected display output could not
	// be bound for duplication.
	ErrOutputUnavailable = errors.New("display output unavailable")

	// ErrDuplicationBusy means another process already holds the
	// duplication interface for this output.
	ErrDuplicationBusy = errors.New("desktop duplication held by another process")

	// ErrUnsupported means hardware desktop duplication does not exist
	// on this platform or session type.
	ErrUnsupported = errors.New("desktop duplication not supported")

	// ErrSourceLost is reported when the capture source became invalid
	// mid-stream (display mode change, GPU reset, session switch). The
	// session must be reopened before further use.
	ErrSourceLost = errors.New("capture source lost")
)

// CaptureOutcome tags the result of a single capture attempt.
type CaptureOutcome int

const (
	// FrameCaptured means dst now holds a new desktop frame.
	FrameCaptured CaptureOutcome = iota

	// NoNewFrame means the desktop did not change within the timeout.
	// dst is untouched and still holds the previous frame.
	NoNewFrame

	// SourceLost means the capture source became invalid. The caller
	// must reopen the capture path before the next attempt.
	SourceLost
)

// Capturer is the contract the frame pump drives. Implementations are
// the hardware duplication session and the block-copy fallback.
type Capturer interface {
	// Capture writes the next desktop frame into dst, growing dst as
	// needed, and updates ptr with the current pointer state. timeout
	// bounds the wait for a changed frame where the backend supports
	// waiting; fallback backends ignore it.
	Capture(dst *RawFrame, ptr *PointerState, timeout time.Duration) (CaptureOutcome, error)

	// Bounds returns the source dimensions in pixels.
	Bounds() (width, height int)

	// Name returns a human-readable name for this capture backend.
	Name() string

	// Close releases all backend resources.
	Close() error
}

// Opener produces a ready Capturer. The pump calls it at start and
// again after a SourceLost to rebuild the capture path from scratch.
type Opener func() (Capturer, error)
