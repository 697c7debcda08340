package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// disabledClient is used when no GCP project is configured. Messages are logged and dropped.
type disabledClient struct{}

// EventType represents the type of event/message sent via pubsub. It doubles as the topic name.
type EventType string

const (
	EventMatchCompleted   EventType = "match-completed"
	EventRatingsUpdated   EventType = "ratings-updated"
	EventBracketAdvanced  EventType = "bracket-advanced"
	EventBracketCompleted EventType = "bracket-completed"
	EventLeagueScheduled  EventType = "league-scheduled"
)

// PushRequest is the JSON envelope Pub/Sub push subscriptions POST to the service.
type PushRequest struct {
	Message struct {
		Data       string            `json:"data"` // base64-encoded message payload
		MessageID  string            `json:"messageId"`
		Attributes map[string]string `json:"attributes,omitempty"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}
