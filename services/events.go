package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Domain events emitted by the core workflows. The realtime gateway
// subscribes to the Redis channel and fans events out to connected clients;
// the workflows themselves never touch a transport.
const (
	EventRentalRequestResolved = "rental_request.resolved"
	EventContractCreated       = "contract.created"
	EventContractUpdated       = "contract.updated"
	EventContractSigned        = "contract.signed"
	EventIssueCreated          = "issue.created"
	EventIssueStatusChanged    = "issue.status_changed"
)

type Event struct {
	Name    string      `json:"name"`
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

type Emitter interface {
	Emit(name string, payload interface{})
}

// RedisEmitter publishes events as JSON on a single channel.
type RedisEmitter struct {
	client  *redis.Client
	channel string
}

func NewRedisEmitter(client *redis.Client) *RedisEmitter {
	return &RedisEmitter{client: client, channel: "vinhousing:events"}
}

func (e *RedisEmitter) Emit(name string, payload interface{}) {
	if e.client == nil {
		return
	}
	body, err := json.Marshal(Event{Name: name, Payload: payload, At: time.Now()})
	if err != nil {
		log.Printf("event marshal failed for %s: %v", name, err)
		return
	}
	if err := e.client.Publish(context.Background(), e.channel, body).Err(); err != nil {
		log.Printf("event publish failed for %s: %v", name, err)
	}
}

// NopEmitter discards events.
type NopEmitter struct{}

func (NopEmitter) Emit(string, interface{}) {}
