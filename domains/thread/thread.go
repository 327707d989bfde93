package thread

import (
	"context"
	"time"
)

type BaseRequest struct {
	ThreadID string `json:"thread_id" uri:"thread_id"`
}

type SendMessageRequest struct {
	BaseRequest
	Message string `json:"message" form:"message"`
}

type SendPhotoRequest struct {
	BaseRequest
	PhotoPath  string `json:"photo_path,omitempty" form:"photo_path"`
	PhotoURL   string `json:"photo_url,omitempty" form:"photo_url"`
	PhotoBytes []byte `json:"photo_bytes,omitempty"`
}

type SendVoiceRequest struct {
	BaseRequest
	VoicePath  string `json:"voice_path,omitempty" form:"voice_path"`
	VoiceURL   string `json:"voice_url,omitempty" form:"voice_url"`
	VoiceBytes []byte `json:"voice_bytes,omitempty"`
}

type TypingRequest struct {
	BaseRequest
	DurationMs    int  `json:"duration_ms,omitempty" form:"duration_ms"`
	DisableOnSend bool `json:"disable_on_send,omitempty" form:"disable_on_send"`
}

type ItemRequest struct {
	ThreadID string `json:"thread_id" uri:"thread_id"`
	ItemID   string `json:"item_id" uri:"item_id"`
}

type GenericResponse struct {
	ItemID string `json:"item_id,omitempty"`
	Status string `json:"status"`
}

type MessageView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text,omitempty"`
	MediaURL  string    `json:"media_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ThreadSummary struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	Members        int       `json:"members"`
	Departed       int       `json:"departed"`
	Messages       int       `json:"messages"`
	LastActivityAt time.Time `json:"last_activity_at"`
	Muted          bool      `json:"muted"`
	Pinned         bool      `json:"pinned"`
	Named          bool      `json:"named"`
	Pending        bool      `json:"pending"`
	IsGroup        bool      `json:"is_group"`
	IsTyping       bool      `json:"is_typing"`
}

type ThreadDetail struct {
	ThreadSummary
	AdminIDs []string      `json:"admin_ids"`
	Items    []MessageView `json:"items"`
}

type IThreadUsecase interface {
	SendText(ctx context.Context, request SendMessageRequest) (GenericResponse, error)
	SendPhoto(ctx context.Context, request SendPhotoRequest) (GenericResponse, error)
	SendVoice(ctx context.Context, request SendVoiceRequest) (GenericResponse, error)
	StartTyping(ctx context.Context, request TypingRequest) error
	StopTyping(ctx context.Context, threadID string) error
	Approve(ctx context.Context, threadID string) error
	MarkItemSeen(ctx context.Context, request ItemRequest) error
	DeleteItem(ctx context.Context, request ItemRequest) error
	ListThreads(ctx context.Context) ([]ThreadSummary, error)
	GetThread(ctx context.Context, threadID string) (ThreadDetail, error)
}
