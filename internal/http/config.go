package http

import (
	"github.com/hnedelkov/bookshelf/internal/acquisition"
	"github.com/hnedelkov/bookshelf/internal/library"
)

// RouterConfig holds all dependencies needed to construct the HTTP router.
// Using a config struct keeps NewRouter's signature stable as the surface
// grows and makes tests explicit about what they wire up.
type RouterConfig struct {
	// Library is the shelf/book coordinator backing every data endpoint.
	Library *library.Library

	// Sessions tracks live acquisition workflows. Optional: when nil the
	// acquisition endpoints are not registered.
	Sessions *acquisition.Manager

	// SnapshotStore is checked by the health endpoint. Optional.
	SnapshotStore Pinger

	// Version is reported by the health endpoint.
	Version string
}
