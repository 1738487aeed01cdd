package compositor

import "errors"

var (
	// ErrInitialization wraps any failure to bring the compositor
	// up. The server is left inert and Shutdown is safe to call.
	ErrInitialization = errors.New("compositor initialization")

	// ErrAllocation wraps a failed drawable allocation. The window
	// it was for is dropped; everything else keeps running.
	ErrAllocation = errors.New("drawable allocation")

	// ErrUnsupportedBuffer means a committed buffer has no readable
	// pixels, because its pool is gone or its format is unknown. The
	// commit is skipped.
	ErrUnsupportedBuffer = errors.New("unsupported buffer")

	// ErrRegistryCollision means a window identity was assigned
	// twice. This breaks a core invariant, so the newer window is
	// destroyed on the spot.
	ErrRegistryCollision = errors.New("window identity collision")
)
