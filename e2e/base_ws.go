package e2e

import (
	"encoding/json"
	"fmt"
	"net/url"
	"testing"
	"time"

	"chat-relay/ws"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

const readTimeout = 5 * time.Second

type BaseWsSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RelayAddr == "" {
		s.T().Skip("RELAY_ADDR not set, skipping e2e suite")
	}
}

// Client is one live websocket session against the relay under test.
type Client struct {
	suite *BaseWsSuite
	conn  *websocket.Conn
	name  string
}

// Dial opens a websocket session with logging and colors
func (s *BaseWsSuite) Dial(t *testing.T, name string) *Client {
	// 1. Print a colorized header for the connection step in logs
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	// 2. Open the session
	u := url.URL{Scheme: "ws", Host: s.Config.RelayAddr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	s.Require().NoError(err, "Failed to dial relay at %s", u.String())
	t.Cleanup(func() { _ = conn.Close() })

	return &Client{suite: s, conn: conn, name: name}
}

// Send pushes one inbound frame to the relay.
func (c *Client) Send(frame ws.Frame) {
	if c.suite.Config.DebugJSON {
		raw, _ := json.Marshal(frame)
		c.suite.T().Logf("%s >> %s", c.name, raw)
	}
	c.suite.Require().NoError(c.conn.WriteJSON(frame))
}

// Expect blocks until the next outbound payload arrives and asserts its
// event kind.
func (c *Client) Expect(event string) ws.Payload {
	var payload ws.Payload
	c.suite.Require().NoError(c.conn.SetReadDeadline(time.Now().Add(readTimeout)))
	c.suite.Require().NoError(c.conn.ReadJSON(&payload),
		"%s expected a %q payload", c.name, event)
	if c.suite.Config.DebugJSON {
		raw, _ := json.Marshal(payload)
		c.suite.T().Logf("%s << %s", c.name, raw)
	}
	c.suite.Require().Equal(event, payload.Event)
	return payload
}

// Close ends the session from the client side.
func (c *Client) Close() {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}
