package router

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"go.uber.org/zap"
)

// handleWebsocket upgrades the request and serves session commands on the connection
// until the client leaves or the API shuts down.
func (api *API) handleWebsocket(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, hs, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			api.log.Info("upgrade error", zap.Error(err), zap.String("remote_addr", r.RemoteAddr))
			return
		}

		// server read/write deadlines stay on the hijacked conn
		_ = conn.SetDeadline(time.Time{})

		user := api.hub.Register(conn)
		api.log.Info("established websocket connection", zap.String("connection name", nameConn(conn)),
			zap.Uint("user", user.GetID()), zap.String("protocol", hs.Protocol))

		go func() {
			defer api.hub.Remove(user)

			err := user.Serve(ctx)
			if isClosed(err) {
				api.log.Info("user disconnected from websocket server", zap.Uint("user", user.GetID()))
				return
			}
			api.log.Error("websocket connection failed", zap.Uint("user", user.GetID()), zap.Error(err))
		}()
	}
}

func isClosed(err error) bool {
	var closed wsutil.ClosedError
	return err == nil ||
		errors.As(err, &closed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, context.Canceled)
}

func nameConn(conn net.Conn) string {
	return conn.LocalAddr().String() + " > " + conn.RemoteAddr().String()
}
