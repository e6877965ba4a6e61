package event

import (
	"chat-relay/domain"
	"time"
)

// DomainEvent is an outbound presence or message event, fanned out to the
// members of one room. The timestamp is assigned by the coordinator at
// processing time, never taken from the client.
type DomainEvent interface {
	RoomID() domain.RoomID
}

type UserJoined struct {
	Room     domain.RoomID
	Username string
	At       time.Time
}

func (e UserJoined) RoomID() domain.RoomID {
	return e.Room
}

type UserLeft struct {
	Room     domain.RoomID
	Username string
	At       time.Time
}

func (e UserLeft) RoomID() domain.RoomID {
	return e.Room
}

type MessagePosted struct {
	Room    domain.RoomID
	Author  string
	Content string
	At      time.Time
}

func (e MessagePosted) RoomID() domain.RoomID {
	return e.Room
}
