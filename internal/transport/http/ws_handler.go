package http

import (
	"encoding/json"
	"net/http"

	"flag-quiz-service/internal/app"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Index *int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// ServeWS upgrades HTTP requests to websockets and wires them into the game use cases.
// Clients send "answer" {index}, "continue" and "reset"; the server replies with
// "roundComplete", "round", "gameOver" and pushes "state" for every change.
// Closing the socket keeps the game so the same playerId can reconnect to it;
// a "leave" message ends the connection and discards the game.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		playerID = uuid.NewString()
	}
	logger := log.With().Str("player", playerID).Logger()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	started, err := h.service.Start(ctx, playerID)
	if err != nil {
		logger.Error().Err(err).Msg("start game")
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}

	updates, cancel, err := h.service.Subscribe(ctx, playerID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	defer cancel()

	// The first update mirrors the joined snapshot.
	<-updates

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: started}
	logger.Info().Msg("player joined")

	left := false
read:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Index == nil {
				send <- errorMessage("invalid answer payload")
				continue
			}
			res, err := h.service.Answer(ctx, playerID, *payload.Index)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "roundComplete", Payload: res}
		case "continue":
			snap, summary, err := h.service.Continue(ctx, playerID)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			if summary != nil {
				logger.Info().Int("finalScore", summary.FinalScore).Msg("game over")
				send <- outboundMessage[any]{Type: "gameOver", Payload: summary}
				continue
			}
			send <- outboundMessage[any]{Type: "round", Payload: snap}
		case "reset":
			snap, err := h.service.Reset(ctx, playerID)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "round", Payload: snap}
		case "leave":
			left = true
			break read
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone

	if left {
		cancel()
		h.service.Leave(ctx, playerID)
		logger.Info().Msg("player left")
	}
}
