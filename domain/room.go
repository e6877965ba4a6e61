// Package domain contains core concepts of the relay.
// It defines rooms, memberships and inbound commands.
// No runtime, network, or UI logic should be added here.
package domain

// RoomID is the normalized name of a room. Normalization (lowercasing,
// collapsing whitespace runs to single hyphens) happens at the transport
// boundary, before a name is ever used as a key.
type RoomID string

// Member is one connection's membership entry inside a room: the
// connection identifier and the display name it joined under.
type Member struct {
	ConnectionID string
	Username     string
}
