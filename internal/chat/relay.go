package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/yuuma-dev/translachat/pkg/protocol"
)

// RoomChecker reports whether a room code refers to an existing room.
type RoomChecker func(code string) bool

// Options configures a Relay.
type Options struct {
	// DefaultRoom is the room used for joins that carry no room code.
	// The direct topology runs a single implicit room this way.
	DefaultRoom string

	// CheckRoom validates room codes on join. When nil any code is accepted.
	CheckRoom RoomChecker

	Logger *slog.Logger
}

// member is a registered connection with its outgoing write queue.
type member struct {
	id       ConnID
	conn     Conn
	room     string
	outgoing chan []byte
}

// Relay accepts connections, decodes inbound frames and fans chat traffic out
// to the other members of the sender's room. Each connection moves through
// unidentified -> identified -> closed; the only accepted message while
// unidentified is a join. The relay transports messages verbatim and never
// translates.
type Relay struct {
	opts   Options
	reg    *Registry
	logger *slog.Logger

	mu      sync.RWMutex
	members map[ConnID]*member
	stopped bool

	events chan Event
	wg     sync.WaitGroup
}

// NewRelay creates a Relay.
func NewRelay(opts Options) *Relay {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		opts:    opts,
		reg:     NewRegistry(),
		logger:  logger,
		members: make(map[ConnID]*member),
		events:  make(chan Event, 64),
	}
}

// Events returns the relay's event stream. The channel is closed by Stop.
func (r *Relay) Events() <-chan Event {
	return r.events
}

// MemberCount returns the number of joined connections.
func (r *Relay) MemberCount() int {
	return r.reg.Count()
}

// RoomSize returns the number of joined connections in a room.
func (r *Relay) RoomSize(code string) int {
	return r.reg.RoomSize(strings.ToUpper(code))
}

// HandleConn serves a single connection until it closes. It blocks, so
// transports call it from the per-connection goroutine.
func (r *Relay) HandleConn(ctx context.Context, conn Conn) {
	m := &member{
		id:       NewConnID(),
		conn:     conn,
		outgoing: make(chan []byte, 16),
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		conn.Close()
		return
	}
	r.members[m.id] = m
	// Both loops and the final drop are covered by wg so Stop cannot close
	// the event stream while a connection is still emitting.
	r.wg.Add(2)
	r.mu.Unlock()

	defer r.wg.Done()
	go r.writeLoop(m)

	r.readLoop(ctx, m)
	r.drop(m)
}

// Broadcast sends a message to every member of a room, including its origin
// if the origin happens to be a member. A hosting process uses it to inject
// its own outgoing messages; echoing its own text locally stays the host's
// concern.
func (r *Relay) Broadcast(roomCode string, msg protocol.Message) error {
	data, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode broadcast message: %w", err)
	}
	r.fanOut(strings.ToUpper(roomCode), "", data)
	return nil
}

// Stop closes every member connection and the event stream. Peers observe the
// shutdown as their connection dropping.
func (r *Relay) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	conns := make([]Conn, 0, len(r.members))
	for _, m := range r.members {
		conns = append(conns, m.conn)
	}
	r.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	r.wg.Wait()
	close(r.events)
}

func (r *Relay) readLoop(ctx context.Context, m *member) {
	for {
		data, err := m.conn.Read(ctx)
		if err != nil {
			return
		}

		var msg protocol.Message
		if err := msg.Decode(data); err != nil {
			// Malformed frames are dropped, never fatal.
			r.logger.Debug("dropping undecodable frame", "addr", m.conn.RemoteAddr(), "err", err)
			continue
		}

		_, identified := r.reg.Identity(m.id)

		switch msg.Type {
		case protocol.TypeJoin:
			if !r.handleJoin(m, msg) {
				return
			}
		case protocol.TypeChat:
			if !identified {
				// Chat before join is dropped without terminating the connection.
				continue
			}
			r.fanOut(m.room, m.id, data)
			r.emit(Event{Kind: EventChatReceived, Room: m.room, Name: msg.Name, Lang: msg.Lang, Message: msg})
		default:
			// Peers have no business sending system or error frames.
			continue
		}
	}
}

// handleJoin registers the identity and notifies the room. It returns false
// when the connection must be closed (unknown room code).
func (r *Relay) handleJoin(m *member, msg protocol.Message) bool {
	code := strings.ToUpper(msg.Code)
	if code == "" {
		code = r.opts.DefaultRoom
	}
	if r.opts.CheckRoom != nil && !r.opts.CheckRoom(code) {
		r.logger.Info("join to unknown room", "code", code, "addr", m.conn.RemoteAddr())
		errMsg := protocol.NewError("room not found")
		if data, err := errMsg.Encode(); err == nil {
			_ = m.conn.Write(context.Background(), data)
		}
		return false
	}

	prev := r.reg.RegisterJoin(m.id, code, msg.Name, msg.Lang)
	m.room = code
	if prev != nil {
		r.logger.Info("identity overwritten", "room", code, "old", prev.Name, "new", msg.Name)
	} else {
		r.logger.Info("peer joined", "room", code, "name", msg.Name, "lang", msg.Lang)
	}

	note := protocol.NewSystem(fmt.Sprintf("%s (%s) joined", msg.Name, msg.Lang))
	if data, err := note.Encode(); err == nil {
		r.fanOut(code, m.id, data)
	}
	r.emit(Event{Kind: EventJoined, Room: code, Name: msg.Name, Lang: msg.Lang})
	return true
}

// drop transitions a connection to closed: registry entry removed, remaining
// members notified, member queue torn down.
func (r *Relay) drop(m *member) {
	r.mu.Lock()
	delete(r.members, m.id)
	close(m.outgoing)
	r.mu.Unlock()
	_ = m.conn.Close()

	identity, roomCode := r.reg.Unregister(m.id)
	if identity == nil {
		return
	}
	r.logger.Info("peer left", "room", roomCode, "name", identity.Name)

	note := protocol.NewSystem(identity.Name + " left")
	if data, err := note.Encode(); err == nil {
		r.fanOut(roomCode, m.id, data)
	}
	r.emit(Event{Kind: EventLeft, Room: roomCode, Name: identity.Name, Lang: identity.Lang})
}

// fanOut queues data for every room member except excludeID. The membership
// snapshot is taken before delivery, and sends happen under the member lock
// so a queue cannot be torn down mid-send.
func (r *Relay) fanOut(roomCode string, excludeID ConnID, data []byte) {
	ids := r.reg.RoomMembers(roomCode)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range ids {
		if id == excludeID {
			continue
		}
		m, ok := r.members[id]
		if !ok {
			continue
		}
		select {
		case m.outgoing <- data:
		default:
			// Queue is full, skip this member rather than block fan-out.
			r.logger.Warn("member queue full, dropping frame", "addr", m.conn.RemoteAddr())
		}
	}
}

func (r *Relay) writeLoop(m *member) {
	defer r.wg.Done()
	for data := range m.outgoing {
		if err := m.conn.Write(context.Background(), data); err != nil {
			r.logger.Debug("failed to write to member", "addr", m.conn.RemoteAddr(), "err", err)
			return
		}
	}
}

func (r *Relay) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
		r.logger.Warn("event stream full, dropping event", "kind", ev.Kind.String())
	}
}
