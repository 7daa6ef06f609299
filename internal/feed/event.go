// Package feed fans kudo lifecycle events out to every connected realtime
// client over a single shared room.
package feed

import "encoding/json"

// Room is the only broadcast group; every admitted client joins it.
const Room = "kudo-feed"

type EventName string

const (
	KudoCreated         EventName = "kudo:created"
	KudoUpdated         EventName = "kudo:updated"
	KudoDeleted         EventName = "kudo:deleted"
	KudoReactionAdded   EventName = "kudo:reaction_added"
	KudoReactionRemoved EventName = "kudo:reaction_removed"
)

// Event carries the full kudo as last seen by the emitter.
type Event struct {
	Name EventName
	Data interface{}
}

// Envelope is the wire shape of every message sent to subscribers.
type Envelope struct {
	Event EventName       `json:"event"`
	Room  string          `json:"room"`
	Data  json.RawMessage `json:"data"`
}

func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: e.Name, Room: Room, Data: data})
}

// Publisher accepts events for best-effort delivery. Publish never blocks on
// slow subscribers.
type Publisher interface {
	Publish(Event)
}
