package models

import (
	"time"
	"unicode/utf8"
)

// NotificationEvent is an inbound chat message discovered by the bridge's
// polling loop. The bridge never mutates events, only reads and forwards them.
// The ID is globally unique per source and drives deduplication.
type NotificationEvent struct {
	ID         string    `json:"id"`
	Sender     string    `json:"contactName"`
	Body       string    `json:"body"`
	IsGroup    bool      `json:"isGroup"`
	GroupName  string    `json:"groupName,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Summary renders the one-line form forwarded to the agent, e.g.
// "Mitul: hello" or "Mitul in Family: hello". Bodies are truncated so a long
// message never floods the voice channel.
func (e NotificationEvent) Summary() string {
	body := e.Body
	if len(body) > 100 {
		cut := 100
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	if e.IsGroup {
		group := e.GroupName
		if group == "" {
			group = "Group"
		}
		return e.Sender + " in " + group + ": " + body
	}
	return e.Sender + ": " + body
}
