package ws

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeRoom(t *testing.T) {
	req := require.New(t)

	req.Equal("general", NormalizeRoom("General"))
	req.Equal("my-room", NormalizeRoom("My Room"))
	req.Equal("my-room", NormalizeRoom("  my \t room  "))
	req.Equal("already-fine", NormalizeRoom("already-fine"))
}

func TestFrame_Command_Join(t *testing.T) {
	req := require.New(t)
	frame := Frame{Event: "join", Username: "alice", Room: "My Room"}

	cmd, err := frame.Command("conn-1")

	req.NoError(err)
	req.Equal(domain.JoinCommand{Conn: "conn-1", Username: "alice", Room: "my-room"}, cmd)
}

func TestFrame_Command_Message(t *testing.T) {
	req := require.New(t)
	frame := Frame{Event: "message", Username: "alice", Room: "general", Message: "hi"}

	cmd, err := frame.Command("conn-1")

	req.NoError(err)
	req.Equal(domain.PostMessageCommand{Conn: "conn-1", Username: "alice", Room: "general", Content: "hi"}, cmd)
}

func TestFrame_Command_Leave_Ignores_Payload_Fields(t *testing.T) {
	req := require.New(t)
	// The leave transition acts on the tracked room, not the payload
	frame := Frame{Event: "leave"}

	cmd, err := frame.Command("conn-1")

	req.NoError(err)
	req.Equal(domain.LeaveCommand{Conn: "conn-1"}, cmd)
}

func TestFrame_Command_Rejects_Missing_Fields(t *testing.T) {
	req := require.New(t)

	for _, frame := range []Frame{
		{Event: "join", Username: "", Room: "general"},
		{Event: "join", Username: "alice", Room: ""},
		{Event: "message", Username: "alice", Room: ""},
		{Event: "dance", Username: "alice", Room: "general"},
		{},
	} {
		cmd, err := frame.Command("conn-1")
		req.Error(err, "frame %+v must be rejected", frame)
		req.Nil(cmd)
	}
}

func TestToPayload_Presence_Texts_And_Millis(t *testing.T) {
	req := require.New(t)
	at := time.UnixMilli(1700000000123).UTC()

	payload, ok := toPayload(event.UserJoined{Room: "general", Username: "alice", At: at})
	req.True(ok)
	req.Equal(Payload{
		Event:     "join",
		Username:  "alice",
		Message:   "alice has joined the room",
		Room:      "general",
		Timestamp: 1700000000123,
	}, payload)

	payload, ok = toPayload(event.UserLeft{Room: "general", Username: "bob", At: at})
	req.True(ok)
	req.Equal("bob has left the room", payload.Message)
	req.Equal("leave", payload.Event)

	payload, ok = toPayload(event.MessagePosted{Room: "general", Author: "alice", Content: "hi", At: at})
	req.True(ok)
	req.Equal(Payload{
		Event:     "message",
		Username:  "alice",
		Message:   "hi",
		Room:      "general",
		Timestamp: 1700000000123,
	}, payload)
}
