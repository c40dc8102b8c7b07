package staging

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stagebridge/stagebridge/internal/common"
)

// RepositoryKey identifies one staging session. Two keys are equal iff all
// fields are equal, so the type is kept comparable.
type RepositoryKey struct {
	UserID     string
	ClientAddr string
	// profileID is empty for profile-less repositories; ProfileID
	// substitutes the NoProfile sentinel.
	profileID string
	Index     uint32
}

// NewRepositoryKey builds a key. An empty profileID means the repository was
// opened without a profile.
func NewRepositoryKey(userID, clientAddr, profileID string, index uint32) RepositoryKey {
	if profileID == NoProfile {
		profileID = ""
	}
	return RepositoryKey{
		UserID:     userID,
		ClientAddr: clientAddr,
		profileID:  profileID,
		Index:      index,
	}
}

// ProfileID returns the profile, or the NoProfile sentinel when the key was
// created without one.
func (k RepositoryKey) ProfileID() string {
	if k.profileID == "" {
		return NoProfile
	}
	return k.profileID
}

// RepositoryID is the public identifier handed to clients, e.g.
// "comexample-1". It re-parses into an equal key via ParseRepositoryID.
func (k RepositoryKey) RepositoryID() string {
	return fmt.Sprintf("%s-%d", k.ProfileID(), k.Index)
}

func (k RepositoryKey) String() string {
	return fmt.Sprintf("%s/%s/%s-%d", k.UserID, k.ClientAddr, k.ProfileID(), k.Index)
}

// ParseRepositoryID reconstructs a key from the caller's identity/address and
// the public repository identifier. The identifier is split on its last '-';
// a missing or non-numeric suffix is a validation error, never a silent
// default.
func ParseRepositoryID(userID, clientAddr, repositoryID string) (RepositoryKey, error) {
	sep := strings.LastIndex(repositoryID, "-")
	if sep < 0 {
		return RepositoryKey{}, fmt.Errorf("%w: invalid repository id %q", common.ErrorValidation, repositoryID)
	}

	profileID, suffix := repositoryID[:sep], repositoryID[sep+1:]
	index, err := strconv.ParseUint(suffix, 10, 32)
	if err != nil {
		return RepositoryKey{}, fmt.Errorf("%w: invalid repository index in %q: %v", common.ErrorValidation, repositoryID, err)
	}

	return NewRepositoryKey(userID, clientAddr, profileID, uint32(index)), nil
}
