// Package identity answers who the current user is, if anyone. Orders work
// without an identity; an identifier is only attached for attribution.
package identity

// Provider supplies the identifier of the currently signed-in user.
type Provider interface {
	// CurrentIdentifier returns the identifier to attach to outgoing orders
	// and whether one exists.
	CurrentIdentifier() (string, bool)
}

// Static is a Provider with a fixed identifier. The empty string means
// anonymous.
type Static string

// CurrentIdentifier implements Provider.
func (s Static) CurrentIdentifier() (string, bool) {
	return string(s), s != ""
}

// Anonymous is a Provider with no identity.
var Anonymous Provider = Static("")
