package models

// Event is a domain event published to the redis event channel.
type Event struct {
	EntityType string `json:"entity_type"`
	Method     string `json:"method"`
	EntityId   string `json:"entity_id"`
	ItemId     string `json:"item_id,omitempty"`
	ActorId    string `json:"actor_id,omitempty"`
}
