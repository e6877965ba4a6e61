package e2e

import (
	"testing"

	"chat-relay/ws"

	"github.com/stretchr/testify/suite"
)

type testRelaySuite struct {
	BaseWsSuite
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, &testRelaySuite{})
}

func (s *testRelaySuite) TestTwoClientsMeetChatAndPart() {
	var alice, bob *Client

	s.Run("Step 1: Alice joins and is echoed her own join", func() {
		alice = s.Dial(s.T(), "alice")
		alice.Send(ws.Frame{Event: "join", Username: "alice", Room: "general"})

		payload := alice.Expect("join")
		s.Require().Equal("alice", payload.Username)
		s.Require().Equal("general", payload.Room)
		s.Require().Equal("alice has joined the room", payload.Message)
		s.Require().Positive(payload.Timestamp)
	})

	s.Run("Step 2: Bob joins and both are notified", func() {
		bob = s.Dial(s.T(), "bob")
		bob.Send(ws.Frame{Event: "join", Username: "bob", Room: "general"})

		s.Require().Equal("bob", alice.Expect("join").Username)
		s.Require().Equal("bob has joined the room", bob.Expect("join").Message)
	})

	s.Run("Step 3: Alice's message reaches everyone in the room", func() {
		alice.Send(ws.Frame{Event: "message", Username: "alice", Room: "general", Message: "hi"})

		for _, c := range []*Client{alice, bob} {
			payload := c.Expect("message")
			s.Require().Equal("alice", payload.Username)
			s.Require().Equal("hi", payload.Message)
		}
	})

	s.Run("Step 4: Bob disconnects and Alice sees him leave", func() {
		bob.Close()

		payload := alice.Expect("leave")
		s.Require().Equal("bob", payload.Username)
		s.Require().Equal("bob has left the room", payload.Message)
	})
}

func (s *testRelaySuite) TestRoomNamesAreNormalizedAtTheBoundary() {
	alice := s.Dial(s.T(), "alice")
	bob := s.Dial(s.T(), "bob")

	// Different spellings of the same room must land in the same key
	alice.Send(ws.Frame{Event: "join", Username: "alice", Room: "My Room"})
	s.Require().Equal("my-room", alice.Expect("join").Room)

	bob.Send(ws.Frame{Event: "join", Username: "bob", Room: "my  ROOM"})
	s.Require().Equal("bob", alice.Expect("join").Username)
}
