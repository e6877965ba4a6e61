package domain

// Command is an inbound intent from one connection. Commands from many
// connections interleave arbitrarily; the coordinator consumes them from
// a single ordered queue so room state is never mutated concurrently.
type Command interface {
	ConnectionID() string
}

// JoinCommand asks to enter a room under a display name. A connection
// already joined elsewhere is fully vacated from its previous room first.
type JoinCommand struct {
	Conn     string
	Username string
	Room     RoomID
}

func (c JoinCommand) ConnectionID() string {
	return c.Conn
}

// PostMessageCommand carries a chat message. Username and Room are the
// client-asserted payload values, not the tracked presence entry.
type PostMessageCommand struct {
	Conn     string
	Username string
	Room     RoomID
	Content  string
}

func (c PostMessageCommand) ConnectionID() string {
	return c.Conn
}

// LeaveCommand asks to vacate the current room, whichever it is.
type LeaveCommand struct {
	Conn string
}

func (c LeaveCommand) ConnectionID() string {
	return c.Conn
}

// DisconnectCommand signals that the transport session closed. It implies
// a leave and additionally tears down the connection's session entry.
type DisconnectCommand struct {
	Conn string
}

func (c DisconnectCommand) ConnectionID() string {
	return c.Conn
}
