package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/stories"
)

// allStories is the topic that receives every change event.
const allStories = "*"

// ChangeEvent is the payload of a server-sent change notification.
type ChangeEvent struct {
	Action  string   `json:"action"`
	Added   []string `json:"added,omitempty"`
	Changed []string `json:"changed,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // Topic -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      slog.Default(),
	}
}

func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[topic]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, topic)
				}
			}
		})
	}
}

func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "topic", topic)
		}
	}
}

// broadcast is the library listener feeding the streams.
func (s *Server) broadcast(prev, next []*domain.Story, action stories.Action) {
	diff := domain.Diff(prev, next)
	if diff.IsEmpty() {
		return
	}
	event := ChangeEvent{Action: action.Type(), Removed: diff.Removed}
	for _, st := range diff.Added {
		event.Added = append(event.Added, st.ID)
	}
	for _, st := range diff.Changed {
		event.Changed = append(event.Changed, st.ID)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("SSE: Failed to encode change event", "err", err)
		return
	}
	msg := string(payload)

	s.Streams.Broadcast(allStories, msg)
	for _, ids := range [][]string{event.Added, event.Changed, event.Removed} {
		for _, id := range ids {
			s.Streams.Broadcast(id, msg)
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE). With ?story=ID only changes
// to that story are sent.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	topic := r.URL.Query().Get("story")
	if topic == "" {
		topic = allStories
	}

	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: Client subscribed", "topic", topic)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "topic", topic)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
