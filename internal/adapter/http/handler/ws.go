package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/metrics"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
	ws "github.com/yerzhank/ride-dispatch/pkg/wsHub"
)

const serviceName = "dispatch"

type WebSocket struct {
	hub      *ws.ConnectionHub
	dispatch WSDispatch
	l        logger.Logger

	upgrader websocket.Upgrader
}

// WSDispatch resolves the dispatch-side consequences of a connection
// appearing or disappearing.
type WSDispatch interface {
	DriverGone(driverID uuid.UUID)
}

func NewWebSocket(hub *ws.ConnectionHub, dispatch WSDispatch, l logger.Logger) *WebSocket {
	return &WebSocket{
		hub:      hub,
		dispatch: dispatch,
		l:        l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Connect godoc
// @Summary      Open the participant event stream
// @Description  Upgrades to a websocket; drivers receive ride offers, riders receive outcomes
// @Tags         WebSocket
// @Router       /ws [get]
func (h *WebSocket) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_connect")

	participant := models.ParticipantFromContext(ctx)
	if participant == nil {
		errorResponse(w, http.StatusUnauthorized, "authorization required")
		return
	}
	ctx = wrap.WithParticipantID(ctx, participant.ID.String())

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "websocket upgrade failed", err)
		return
	}

	conn := ws.NewConn(ctx, participant.ID, wsConn)
	session := ws.NewSession(conn, participant.Role, participant.Name, participant.VehicleType)

	if err := h.hub.Add(session); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register session", err)
		conn.Close()
		return
	}

	metrics.WebSocketConnectionsGauge.WithLabelValues(serviceName).Set(float64(h.hub.Len()))
	h.l.Info(ctx, "participant connected", "role", participant.Role.String())

	defer func() {
		// a reconnect replaces the session in the hub; only the
		// registered session's teardown releases the driver's offers
		if h.hub.Remove(session) && participant.IsDriver() {
			h.dispatch.DriverGone(participant.ID)
		}
		metrics.WebSocketConnectionsGauge.WithLabelValues(serviceName).Set(float64(h.hub.Len()))
		h.l.Info(ctx, "participant disconnected")
	}()

	err = conn.Listen(func(data []byte) error {
		return h.handleMessage(session, participant, data)
	})
	if err != nil {
		h.l.Debug(ctx, "websocket session ended", "reason", err.Error())
	}
}

// handleMessage processes one inbound frame. Reading the frame already
// refreshed the heartbeat, so unknown types are simply dropped.
func (h *WebSocket) handleMessage(session *ws.Session, participant *models.Participant, data []byte) error {
	var msg models.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil
	}

	switch msg.Type {
	case models.MsgTypePing:
		return session.Send(models.WSMessage{Type: models.MsgTypePong})
	case models.MsgTypeLocation:
		if !participant.IsDriver() {
			return nil
		}
		var loc models.LocationPayload
		if err := json.Unmarshal(msg.Payload, &loc); err != nil {
			return nil
		}
		if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
			return nil
		}
		session.SetLocation(loc.Latitude, loc.Longitude)
	}
	return nil
}
