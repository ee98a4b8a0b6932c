package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"sort"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/Collectorx/pkg/http/usecases"
	"github.com/lintang-b-s/Collectorx/pkg/session"
	"github.com/lintang-b-s/Collectorx/pkg/util"
	"go.uber.org/zap"
)

// User is one websocket connection and the routing session it drives.
type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id      uint
	hub     *Hub
	session *session.Session
}

func (u *User) GetID() uint {
	return u.id
}

func (u *User) GetSession() *session.Session {
	return u.session
}

// readCommand returns nil, nil after handling a control frame.
func (u *User) readCommand() (*session.Command, error) {
	u.io.Lock()
	defer u.io.Unlock()

	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}

	// the next NextReader call expects the frame fully consumed
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cmd := &session.Command{}
	if err := json.Unmarshal(payload, cmd); err != nil {
		return cmd, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput, "malformed command: %v", err)
	}
	return cmd, nil
}

// HandleCommand reads one frame, dispatches it against the user's session and writes the
// reply. Command failures are reported to the client; only connection errors are returned.
func (u *User) HandleCommand(ctx context.Context) error {
	cmd, err := u.readCommand()
	if cmd == nil {
		return err
	}
	if err != nil {
		return u.write(envelope{"action": cmd.Action, "error": errorBody(err)})
	}

	result, err := u.hub.dispatcher.Dispatch(ctx, u.session, *cmd)
	if err != nil {
		u.hub.log.Debug("websocket command failed", zap.Uint("user", u.id),
			zap.String("action", cmd.Action), zap.Error(err))
		return u.write(envelope{"action": cmd.Action, "error": errorBody(err)})
	}

	if route, ok := result.(*usecases.CollectionRoute); ok {
		result = NewCollectionRouteResponse(route, true)
	}
	return u.write(envelope{"action": cmd.Action, "data": result})
}

// Serve handles commands until the connection fails or ctx is done.
func (u *User) Serve(ctx context.Context) error {
	for {
		if util.StopConcurrentOperation(ctx) {
			return ctx.Err()
		}
		if err := u.HandleCommand(ctx); err != nil {
			return err
		}
	}
}

func (u *User) write(x interface{}) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

// Hub tracks the connected users. Each user owns a fresh session.
type Hub struct {
	mu         sync.RWMutex
	seq        uint
	us         []*User
	ns         map[uint]*User
	dispatcher *session.Dispatcher
	log        *zap.Logger
}

func NewHub(dispatcher *session.Dispatcher, log *zap.Logger) *Hub {
	return &Hub{
		ns:         make(map[uint]*User),
		us:         make([]*User, 0),
		dispatcher: dispatcher,
		log:        log,
	}
}

func (h *Hub) Register(conn net.Conn) *User {
	user := &User{
		hub:  h,
		conn: conn,
	}

	h.mu.Lock()
	user.id = h.seq
	user.session = session.NewSession(user.id)
	h.ns[user.id] = user
	h.us = append(h.us, user)

	h.seq++
	h.mu.Unlock()

	return user
}

// Remove closes the user's connection and forgets it.
func (h *Hub) Remove(user *User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.ns[user.id]; !ok {
		return
	}
	delete(h.ns, user.id)

	i := sort.Search(len(h.us), func(i int) bool {
		return h.us[i].id >= user.id
	})
	newUs := make([]*User, len(h.us)-1)
	copy(newUs[:i], h.us[:i])
	copy(newUs[i:], h.us[i+1:])
	h.us = newUs

	_ = user.conn.Close()
}

func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.us)
}

func (h *Hub) RemoveAllUser() {
	h.mu.RLock()
	users := make([]*User, len(h.us))
	copy(users, h.us)
	h.mu.RUnlock()

	for _, user := range users {
		h.Remove(user)
	}
}
