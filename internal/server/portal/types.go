// Package portal is the client for the downstream bundle-upload publishing
// API.
package portal

import "strings"

// PublishingType selects what happens to a bundle after validation.
type PublishingType string

const (
	// UserManaged uploads must be published manually by the user.
	UserManaged PublishingType = "USER_MANAGED"

	// Automatic uploads are published as soon as validation passes.
	Automatic PublishingType = "AUTOMATIC"
)

// ParsePublishingType interprets a client-supplied value. Anything that is
// not "automatic" (case-insensitive), including an empty value, falls back to
// UserManaged.
func ParsePublishingType(v string) PublishingType {
	if strings.EqualFold(v, "automatic") {
		return Automatic
	}
	return UserManaged
}
