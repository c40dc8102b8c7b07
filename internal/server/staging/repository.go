// Package staging implements the stateful staging areas that legacy build
// clients upload into before the gateway packages a bundle and forwards it
// downstream.
//
// A staging area goes through the lifecycle open -> closed -> released and is
// identified by a RepositoryKey. Content only exists on the backend while the
// area is open; Finish packages it into an in-memory Archive and removes it.
package staging

import (
	"context"
	"io"
)

// NoProfile is the sentinel profile for uploads that never declared a
// namespace.
const NoProfile = "no-profile"

// Repository is the staging-area contract. It is defined as an interface so
// backends (local filesystem, object storage) can be swapped without touching
// callers.
type Repository interface {
	// Start allocates a fresh repository for the user/address/profile
	// triple and opens its staging area. Indices for a triple are strictly
	// increasing, starting at 0.
	Start(ctx context.Context, userID, clientAddr, profileID string) (RepositoryKey, error)

	// OpenDefault opens the profile-less repository for the user/address
	// pair. Unlike Start it does not allocate a new index when one already
	// exists: repeated calls hand back the same key.
	OpenDefault(ctx context.Context, userID, clientAddr string) (RepositoryKey, error)

	// AddFile streams contents to relativePath inside the staging area.
	// The key must refer to a known, still-open repository and the path
	// must not escape the staging root.
	//
	// A given relative path is assumed not to be written concurrently by
	// two requests for the same key; interleaving in that case is
	// undefined. Partially written files from aborted uploads are left in
	// place and will be included by Finish.
	AddFile(ctx context.Context, authorizedNamespaces []string, key RepositoryKey, relativePath string, contents io.Reader) error

	// Finish packages every staged file into a zip archive, deletes the
	// staged content and transitions the repository to closed. The
	// returned archive is the sole remaining representation of the
	// uploaded content.
	Finish(ctx context.Context, key RepositoryKey) (*Archive, error)

	// Release marks the repository released. Content was already removed
	// by Finish.
	Release(ctx context.Context, key RepositoryKey) error

	// GetState reports the repository's lifecycle state. Unknown or
	// invalid keys yield StateNotFound, never an error.
	GetState(ctx context.Context, key RepositoryKey) (RepositoryState, error)
}
