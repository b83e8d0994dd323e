// Package hub is a websocket broadcast hub for dashboard clients, built on
// the channel-based fan-out pattern: one goroutine owns the client set.
package hub

import "encoding/json"

// Topic names the kind of payload in a Message.
type Topic string

const (
	TopicStatus Topic = "status"
	TopicFrame  Topic = "frame"
	TopicTrends Topic = "trends"
)

// Message is the envelope every dashboard client receives.
type Message struct {
	Topic Topic `json:"topic"`
	Data  any   `json:"data"`
}

// Encode marshals a message for the wire.
func Encode(topic Topic, data any) ([]byte, error) {
	return json.Marshal(Message{Topic: topic, Data: data})
}
