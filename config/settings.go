package config

import "time"

var (
	AppVersion             = "v1.2.0"
	AppPort                = "3000"
	AppDebug               = false
	AppBasicAuthCredential []string
	AppBasePath            = ""
	AppTrustedProxies      []string

	PathStorages = "storages"

	// Typing indicator lifecycle. The keep-alive period must stay shorter
	// than the service's own typing-expiry window.
	TypingDuration  = 10 * time.Second
	TypingKeepAlive = 9 * time.Second

	// SendResolveTimeout bounds how long a send waits for the realtime
	// confirmation of an acknowledged broadcast.
	SendResolveTimeout = 30 * time.Second

	AttachmentMaxPhotoSize    int64 = 8 * 1024 * 1024
	AttachmentMaxVoiceSize    int64 = 4 * 1024 * 1024
	AttachmentMaxPhotoEdge          = 1080
	AttachmentDownloadTimeout       = 30 * time.Second

	ValkeyEnabled   = false
	ValkeyAddress   = "localhost:6379"
	ValkeyPassword  = ""
	ValkeyDB        = 0
	ValkeyKeyPrefix = "gramthread:"

	ServerID = ""
)
