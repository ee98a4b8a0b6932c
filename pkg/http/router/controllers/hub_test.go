package controllers

import (
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/Collectorx/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type wsReply struct {
	Action string                 `json:"action"`
	Data   json.RawMessage        `json:"data"`
	Error  map[string]interface{} `json:"error"`
}

func TestHubServesSessionCommands(t *testing.T) {
	_, svc := newTestRouter(t, &stubProvider{rows: [][]float64{
		{0, 4, 1},
		{4, 0, 2},
		{1, 2, 0},
	}})
	hub := NewHub(session.NewDefaultDispatcher(svc), zap.NewNop())

	server, client := net.Pipe()
	user := hub.Register(server)
	assert.Equal(t, 1, hub.Size())

	done := make(chan error, 1)
	go func() {
		done <- user.Serve(context.Background())
	}()

	send := func(frame string) wsReply {
		t.Helper()
		require.NoError(t, wsutil.WriteClientText(client, []byte(frame)))
		msg, err := wsutil.ReadServerText(client)
		require.NoError(t, err)
		var reply wsReply
		require.NoError(t, json.Unmarshal(msg, &reply))
		return reply
	}

	reply := send(`{"action":"calculateRoute","payload":{"return_to_depot":true}}`)
	assert.Equal(t, "calculateRoute", reply.Action)
	assert.Equal(t, "Bad Request", reply.Error["code"])

	reply = send(`{"action":"setDepot","payload":{"lat":12.97,"lon":77.59}}`)
	assert.Nil(t, reply.Error)

	reply = send(`{"action":"addCollectionPoint","payload":{"lat":12.98,"lon":77.60}}`)
	assert.Nil(t, reply.Error)
	reply = send(`{"action":"addCollectionPoint","payload":{"lat":12.96,"lon":77.58}}`)
	assert.Nil(t, reply.Error)

	var view session.PointsView
	require.NoError(t, json.Unmarshal(reply.Data, &view))
	assert.Len(t, view.Points, 2)

	reply = send(`{"action":"calculateRoute","payload":{"return_to_depot":true}}`)
	require.Nil(t, reply.Error)
	var route collectionRouteResponse
	require.NoError(t, json.Unmarshal(reply.Data, &route))
	assert.Equal(t, []int{0, 2, 1, 0}, route.Order)
	assert.Len(t, route.Geometry, 4)

	reply = send(`not json`)
	assert.Equal(t, "Bad Request", reply.Error["code"])

	reply = send(`{"action":"fly"}`)
	assert.Equal(t, "fly", reply.Action)
	assert.NotNil(t, reply.Error)

	require.NotNil(t, user.GetSession().Route())

	hub.Remove(user)
	assert.Equal(t, 0, hub.Size())
	assert.Error(t, <-done)
}

func TestHubRemoveAllUser(t *testing.T) {
	hub := NewHub(session.NewDispatcher(), zap.NewNop())
	for i := 0; i < 3; i++ {
		server, client := net.Pipe()
		t.Cleanup(func() { client.Close() })
		u := hub.Register(server)
		assert.Equal(t, uint(i), u.GetID())
	}
	assert.Equal(t, 3, hub.Size())

	hub.RemoveAllUser()
	assert.Equal(t, 0, hub.Size())
}
