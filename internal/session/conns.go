package session

// Conn is a live outbound channel to one player's client. Implementations
// must make Send non-blocking: a slow or dead peer drops frames rather than
// stalling the session actor.
type Conn interface {
	Send(frame any)
	Close() error
}

// connSet tracks at most one live connection per player. It is only touched
// from inside the session actor, so no locking is needed.
type connSet struct {
	byPlayer map[string]Conn
}

func newConnSet() *connSet {
	return &connSet{byPlayer: make(map[string]Conn)}
}

// attach registers a connection for a player, closing any previous one. The
// newest connection always wins.
func (c *connSet) attach(playerID string, conn Conn) {
	if old, ok := c.byPlayer[playerID]; ok && old != conn {
		_ = old.Close()
	}
	c.byPlayer[playerID] = conn
}

// detach removes the mapping only if conn is still the registered connection
// for the player. A stale disconnect from a superseded connection is a no-op.
func (c *connSet) detach(playerID string, conn Conn) bool {
	cur, ok := c.byPlayer[playerID]
	if !ok || cur != conn {
		return false
	}
	delete(c.byPlayer, playerID)
	return true
}

func (c *connSet) connected(playerID string) bool {
	_, ok := c.byPlayer[playerID]
	return ok
}

func (c *connSet) sendTo(playerID string, frame any) {
	if conn, ok := c.byPlayer[playerID]; ok {
		conn.Send(frame)
	}
}

func (c *connSet) broadcast(frame any) {
	for _, conn := range c.byPlayer {
		conn.Send(frame)
	}
}

func (c *connSet) closeAll() {
	for id, conn := range c.byPlayer {
		_ = conn.Close()
		delete(c.byPlayer, id)
	}
}
