package session

import "encoding/json"

// Message is the frame carried on the session broadcast channel. Every
// payload travels under a topic; subscribers filter on it.
type Message struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// Encode wraps a payload under a topic as a wire frame.
func Encode(topic string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Topic: topic, Data: data})
}

// Decode parses a wire frame.
func Decode(raw []byte) (Message, error) {
	var msg Message
	err := json.Unmarshal(raw, &msg)
	return msg, err
}
