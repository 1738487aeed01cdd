// Package present defines the contract between the compositor core
// and whatever puts pixels on screen. The compositor drives a Host it
// is handed; it knows nothing about how drawables are shown.
package present

// Host is a presentation backend. The compositor asks it for one
// drawable per window and uses the viewport size only to center
// windows; it never composites drawables itself.
//
// Hosts are driven from the compositor's tick goroutine and do not
// need to be safe for concurrent use.
type Host interface {
	// CreateDrawable allocates a drawable of the given size. New
	// drawables start out visible and empty.
	CreateDrawable(width, height int) (Drawable, error)

	// ViewportSize reports the size of the area drawables are
	// positioned in.
	ViewportSize() (width, height int)
}

// Drawable is one window's image on the host. The compositor owns it
// exclusively: it resizes it when the window's buffer size changes,
// replaces its pixels on every successful commit, hides it when the
// window dies, and destroys it exactly once.
type Drawable interface {
	Resize(width, height int)
	Move(x, y int)

	// SetPixels replaces the drawable's contents with tightly packed
	// RGBA pixels, width*height*4 bytes. The slice may be reused by
	// the caller afterwards.
	SetPixels(pix []byte)

	SetVisible(visible bool)
	Destroy()
}
