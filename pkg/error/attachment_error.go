package error

import "net/http"

// AttachmentError is raised when a photo or voice source cannot be resolved
// into bytes. It always fires before any network call is made.
type AttachmentError string

func (err AttachmentError) Error() string {
	return string(err)
}

func (err AttachmentError) ErrCode() string {
	return "ATTACHMENT_ERROR"
}

func (err AttachmentError) StatusCode() int {
	return http.StatusBadRequest
}
