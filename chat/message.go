package chat

import (
	"time"

	"github.com/fintari/gramthread/domains/directory"
)

// Message is owned exclusively by its thread's message collection. It is
// rebuilt from the raw item on every merge; nothing shares it across threads.
type Message struct {
	ID            string    `json:"id"`
	ThreadID      string    `json:"thread_id"`
	UserID        string    `json:"user_id"`
	Kind          string    `json:"kind"`
	Text          string    `json:"text,omitempty"`
	MediaURL      string    `json:"media_url,omitempty"`
	ClientContext string    `json:"client_context,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func newMessage(threadID string, item directory.RawItem) *Message {
	return &Message{
		ID:            item.ID,
		ThreadID:      threadID,
		UserID:        item.UserID,
		Kind:          item.Kind,
		Text:          item.Text,
		MediaURL:      item.MediaURL,
		ClientContext: item.ClientContext,
		Timestamp:     time.UnixMicro(item.Timestamp),
	}
}
