package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mercado/globals"
	"mercado/models"
	"mercado/rdx"
)

const eventChannel = "marketplace-events"

// Emit publishes a domain event to the redis event channel. Failures are
// logged and swallowed; events are advisory, not part of the write path.
func Emit(ctx context.Context, eventName string, content models.Event) {
	data, err := json.Marshal(content)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event content: %v", err)
		return
	}

	if err := rdx.Conn.Publish(ctx, eventChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s event to Redis: %v", eventName, err)
		return
	}
}

// StartCounterWorker consumes marketplace events and keeps rolling
// per-entity counters in redis (orders per seller, messages per chat).
func StartCounterWorker() {
	ctx := globals.Ctx
	sub := rdx.Conn.Subscribe(ctx, eventChannel)
	ch := sub.Channel()

	log.Println("[CounterWorker] Listening for marketplace events...")

	for msg := range ch {
		var event models.Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[CounterWorker] Failed to parse event: %v", err)
			continue
		}

		key := fmt.Sprintf("count:%s:%s:%s", event.EntityType, event.Method, event.EntityId)
		if err := rdx.Conn.Incr(ctx, key).Err(); err != nil {
			log.Printf("[CounterWorker] Incr error for %s: %v", key, err)
		}
	}
}
