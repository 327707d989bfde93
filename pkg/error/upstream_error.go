package error

import "net/http"

// UpstreamError wraps failures of the wrapped directory client: a broadcast
// that was rejected, or an acknowledged send that never produced a realtime
// confirmation within the resolve window.
type UpstreamError string

func (err UpstreamError) Error() string {
	return string(err)
}

func (err UpstreamError) ErrCode() string {
	return "UPSTREAM_ERROR"
}

func (err UpstreamError) StatusCode() int {
	return http.StatusBadGateway
}
