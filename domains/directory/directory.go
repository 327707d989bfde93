package directory

import (
	"context"
	"time"
)

// ThreadKind classifies a thread as reported by the service.
type ThreadKind string

const (
	ThreadKindPrivate ThreadKind = "private"
	ThreadKindGroup   ThreadKind = "group"
)

// RawUser is the wire shape of a participant record inside a thread snapshot.
type RawUser struct {
	ID            string `json:"pk"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	ProfilePicURL string `json:"profile_pic_url"`
	IsPrivate     bool   `json:"is_private"`
	IsVerified    bool   `json:"is_verified"`
}

// RawItem is the wire shape of a single message item.
type RawItem struct {
	ID            string `json:"item_id"`
	UserID        string `json:"user_id"`
	Kind          string `json:"item_type"`
	Text          string `json:"text,omitempty"`
	MediaURL      string `json:"media_url,omitempty"`
	ClientContext string `json:"client_context,omitempty"`
	// Timestamp is in microseconds since epoch, as the service reports it.
	Timestamp int64 `json:"timestamp"`
}

// RawThread is the snapshot shape consumed by a thread merge, whether it
// arrived through an initial fetch or a realtime push.
type RawThread struct {
	ID             string     `json:"thread_id"`
	Users          []RawUser  `json:"users"`
	LeftUsers      []RawUser  `json:"left_users"`
	Items          []RawItem  `json:"items"`
	AdminUserIDs   []string   `json:"admin_user_ids"`
	LastActivityAt int64      `json:"last_activity_at"`
	Muted          bool       `json:"muted"`
	IsPin          bool       `json:"is_pin"`
	Named          bool       `json:"named"`
	Pending        bool       `json:"pending"`
	IsGroup        bool       `json:"is_group"`
	ThreadType     ThreadKind `json:"thread_type"`
}

// BroadcastAck is the direct response to a broadcast call. The item ID is the
// identifier the realtime confirmation will eventually carry as well.
type BroadcastAck struct {
	ItemID    string
	Timestamp time.Time
}

// EventKind discriminates realtime pushes.
type EventKind string

const (
	// EventMessage carries a single new message item.
	EventMessage EventKind = "message"
	// EventThread carries a full thread snapshot (initial sync, membership
	// change, flag change).
	EventThread EventKind = "thread"
)

// Event is a realtime push from the directory service.
type Event struct {
	Kind     EventKind
	ThreadID string
	Item     *RawItem
	Thread   *RawThread
}

// Client is the externally supplied messaging client. It owns the wire
// protocol, authentication and the realtime transport; this module never
// reimplements any of that.
type Client interface {
	BroadcastText(ctx context.Context, threadID, clientContext, text string) (BroadcastAck, error)
	BroadcastPhoto(ctx context.Context, threadID, clientContext string, photo []byte) (BroadcastAck, error)
	BroadcastVoice(ctx context.Context, threadID, clientContext string, voice []byte) (BroadcastAck, error)
	ApproveThread(ctx context.Context, threadID string) error
	DeleteItem(ctx context.Context, threadID, itemID string) error
	MarkItemSeen(ctx context.Context, threadID, itemID string) error
	IndicateTypingActivity(ctx context.Context, threadID string, active bool) error

	// OnEvent registers a handler for realtime pushes. Handlers are invoked
	// sequentially in registration order.
	OnEvent(handler func(Event))
}
