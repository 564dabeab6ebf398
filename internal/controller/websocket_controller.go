package controller

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benbeisheim/minechess-engine/internal/middleware"
	"github.com/benbeisheim/minechess-engine/internal/service"
	"github.com/benbeisheim/minechess-engine/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"
)

type WebSocketController struct {
	searchService *service.SearchService
}

func NewWebSocketController(searchService *service.SearchService) *WebSocketController {
	return &WebSocketController{
		searchService: searchService,
	}
}

// resultMessage is the payload of a result message.
type resultMessage struct {
	SearchID string `json:"searchId"`
	service.SearchResult
}

// socket serializes writes. Progress of several searches may be forwarded
// to one connection at the same time.
type socket struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *socket) send(t ws.MessageType, payload any) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		log.Error().Err(err).Str("type", string(t)).Msg("websocket-encode-failed")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		log.Debug().Err(err).Str("type", string(t)).Msg("websocket-write-failed")
	}
}

func (s *socket) sendError(searchID string, err error) {
	s.send(ws.MessageTypeError, ws.ErrorPayload{SearchID: searchID, Error: err.Error()})
}

// HandleConnection serves one engine socket until the client disconnects.
// Searches the client started are stopped when it goes away.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	clientID, _ := c.Locals(middleware.ClientIDLocal).(string)
	conn := &socket{conn: c}
	owned := make(map[string]struct{})
	var forwarders sync.WaitGroup

	log.Debug().Str("client_id", clientID).Msg("websocket-connected")
	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("client_id", clientID).Msg("websocket-read-failed")
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			conn.sendError("", fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := wsc.handleMessage(conn, clientID, msg, owned, &forwarders); err != nil {
			conn.sendError("", err)
		}
	}

	for searchID := range owned {
		_ = wsc.searchService.StopSearch(searchID, clientID)
	}
	forwarders.Wait()
	log.Debug().Str("client_id", clientID).Msg("websocket-disconnected")
}

func (wsc *WebSocketController) handleMessage(conn *socket, clientID string, msg ws.Message, owned map[string]struct{}, forwarders *sync.WaitGroup) error {
	switch msg.Type {
	case ws.MessageTypeSearch:
		var req service.SearchRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return fmt.Errorf("malformed search payload: %w", err)
		}
		job, err := wsc.searchService.StartSearch(clientID, req)
		if err != nil {
			return err
		}
		owned[job.ID] = struct{}{}
		conn.send(ws.MessageTypeAccepted, ws.AcceptedPayload{SearchID: job.ID})

		forwarders.Add(1)
		go func() {
			defer forwarders.Done()
			forward(conn, job)
		}()
		return nil

	case ws.MessageTypeStop:
		var stop ws.StopPayload
		if err := json.Unmarshal(msg.Payload, &stop); err != nil {
			return fmt.Errorf("malformed stop payload: %w", err)
		}
		return wsc.searchService.StopSearch(stop.SearchID, clientID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// forward relays a search's events until its final result or error.
func forward(conn *socket, job *service.Job) {
	for event := range job.Events() {
		switch event.Type {
		case service.EventProgress:
			conn.send(ws.MessageTypeProgress, service.NewProgressUpdate(job.ID, event.Progress))
		case service.EventResult:
			conn.send(ws.MessageTypeResult, resultMessage{SearchID: job.ID, SearchResult: service.NewSearchResult(event.Result)})
		case service.EventError:
			conn.sendError(job.ID, event.Err)
		}
	}
}
