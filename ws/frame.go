package ws

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	EventJoin    = "join"
	EventMessage = "message"
	EventLeave   = "leave"
)

var validate = validator.New()

// Frame is the inbound JSON envelope, one per client intent. The event
// names and payload fields mirror what the browser client emits.
type Frame struct {
	Event    string `json:"event" validate:"required,oneof=join message leave"`
	Username string `json:"username" validate:"required_unless=Event leave"`
	Room     string `json:"room" validate:"required_unless=Event leave"`
	Message  string `json:"message"`
}

// Command validates the frame and turns it into the matching domain
// command for the given connection. The room name is normalized here,
// at the request boundary, before it is ever used as a key.
func (f Frame) Command(connID string) (domain.Command, error) {
	if err := validate.Struct(f); err != nil {
		return nil, err
	}

	room := domain.RoomID(NormalizeRoom(f.Room))
	switch f.Event {
	case EventJoin:
		return domain.JoinCommand{Conn: connID, Username: f.Username, Room: room}, nil
	case EventMessage:
		return domain.PostMessageCommand{Conn: connID, Username: f.Username, Room: room, Content: f.Message}, nil
	case EventLeave:
		return domain.LeaveCommand{Conn: connID}, nil
	}
	return nil, fmt.Errorf("unknown event %q", f.Event)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeRoom lowercases a client-supplied room name and collapses
// whitespace runs to single hyphens, so "My  Room" and "my room" are the
// same key.
func NormalizeRoom(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// Payload is the outbound JSON envelope, identical for every recipient
// of one event. Timestamp is epoch millis assigned by the coordinator.
type Payload struct {
	Event     string `json:"event"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Room      string `json:"room"`
	Timestamp int64  `json:"timestamp"`
}

func toPayload(e event.DomainEvent) (Payload, bool) {
	switch evt := e.(type) {
	case event.UserJoined:
		return Payload{
			Event:     EventJoin,
			Username:  evt.Username,
			Message:   fmt.Sprintf("%s has joined the room", evt.Username),
			Room:      string(evt.Room),
			Timestamp: evt.At.UnixMilli(),
		}, true
	case event.UserLeft:
		return Payload{
			Event:     EventLeave,
			Username:  evt.Username,
			Message:   fmt.Sprintf("%s has left the room", evt.Username),
			Room:      string(evt.Room),
			Timestamp: evt.At.UnixMilli(),
		}, true
	case event.MessagePosted:
		return Payload{
			Event:     EventMessage,
			Username:  evt.Author,
			Message:   evt.Content,
			Room:      string(evt.Room),
			Timestamp: evt.At.UnixMilli(),
		}, true
	}
	return Payload{}, false
}
