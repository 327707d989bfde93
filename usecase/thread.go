package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fintari/gramthread/chat"
	domainThread "github.com/fintari/gramthread/domains/thread"
	"github.com/fintari/gramthread/pkg/attachment"
	pkgError "github.com/fintari/gramthread/pkg/error"
	"github.com/fintari/gramthread/validations"
)

type serviceThread struct {
	inbox *chat.Inbox
}

func NewThreadService(inbox *chat.Inbox) domainThread.IThreadUsecase {
	return &serviceThread{inbox: inbox}
}

func (service serviceThread) thread(threadID string) (*chat.Thread, error) {
	t, ok := service.inbox.Thread(threadID)
	if !ok {
		return nil, pkgError.NotFoundError("thread not found: " + threadID)
	}
	return t, nil
}

func (service serviceThread) SendText(ctx context.Context, request domainThread.SendMessageRequest) (response domainThread.GenericResponse, err error) {
	if err = validations.ValidateSendText(ctx, request); err != nil {
		return response, err
	}

	t, err := service.thread(request.ThreadID)
	if err != nil {
		return response, err
	}

	msg, err := t.SendText(ctx, request.Message)
	if err != nil {
		return response, err
	}

	logrus.WithFields(logrus.Fields{
		"thread_id": request.ThreadID,
		"item_id":   msg.ID,
	}).Info("[SEND] Text message sent")

	return domainThread.GenericResponse{ItemID: msg.ID, Status: "sent"}, nil
}

func (service serviceThread) SendPhoto(ctx context.Context, request domainThread.SendPhotoRequest) (response domainThread.GenericResponse, err error) {
	if err = validations.ValidateSendPhoto(ctx, request); err != nil {
		return response, err
	}

	t, err := service.thread(request.ThreadID)
	if err != nil {
		return response, err
	}

	msg, err := t.SendPhoto(ctx, attachment.Source{
		Path: request.PhotoPath,
		URL:  request.PhotoURL,
		Data: request.PhotoBytes,
	})
	if err != nil {
		return response, err
	}

	logrus.WithFields(logrus.Fields{
		"thread_id": request.ThreadID,
		"item_id":   msg.ID,
	}).Info("[SEND] Photo sent")

	return domainThread.GenericResponse{ItemID: msg.ID, Status: "sent"}, nil
}

func (service serviceThread) SendVoice(ctx context.Context, request domainThread.SendVoiceRequest) (response domainThread.GenericResponse, err error) {
	if err = validations.ValidateSendVoice(ctx, request); err != nil {
		return response, err
	}

	t, err := service.thread(request.ThreadID)
	if err != nil {
		return response, err
	}

	msg, err := t.SendVoice(ctx, attachment.Source{
		Path: request.VoicePath,
		URL:  request.VoiceURL,
		Data: request.VoiceBytes,
	})
	if err != nil {
		return response, err
	}

	logrus.WithFields(logrus.Fields{
		"thread_id": request.ThreadID,
		"item_id":   msg.ID,
	}).Info("[SEND] Voice message sent")

	return domainThread.GenericResponse{ItemID: msg.ID, Status: "sent"}, nil
}

func (service serviceThread) StartTyping(ctx context.Context, request domainThread.TypingRequest) error {
	if err := validations.ValidateTyping(ctx, request); err != nil {
		return err
	}

	t, err := service.thread(request.ThreadID)
	if err != nil {
		return err
	}

	return t.StartTyping(ctx, time.Duration(request.DurationMs)*time.Millisecond, request.DisableOnSend)
}

func (service serviceThread) StopTyping(ctx context.Context, threadID string) error {
	t, err := service.thread(threadID)
	if err != nil {
		return err
	}
	return t.StopTyping(ctx)
}

func (service serviceThread) Approve(ctx context.Context, threadID string) error {
	return service.inbox.Approve(ctx, threadID)
}

func (service serviceThread) MarkItemSeen(ctx context.Context, request domainThread.ItemRequest) error {
	if err := validations.ValidateItem(ctx, request); err != nil {
		return err
	}

	t, err := service.thread(request.ThreadID)
	if err != nil {
		return err
	}
	return t.MarkItemSeen(ctx, request.ItemID)
}

func (service serviceThread) DeleteItem(ctx context.Context, request domainThread.ItemRequest) error {
	if err := validations.ValidateItem(ctx, request); err != nil {
		return err
	}

	t, err := service.thread(request.ThreadID)
	if err != nil {
		return err
	}
	return t.DeleteItem(ctx, request.ItemID)
}

func (service serviceThread) ListThreads(ctx context.Context) ([]domainThread.ThreadSummary, error) {
	threads := service.inbox.Threads()
	out := make([]domainThread.ThreadSummary, 0, len(threads))
	for _, t := range threads {
		out = append(out, toSummary(t.Summary()))
	}
	return out, nil
}

func (service serviceThread) GetThread(ctx context.Context, threadID string) (domainThread.ThreadDetail, error) {
	t, err := service.thread(threadID)
	if err != nil {
		return domainThread.ThreadDetail{}, err
	}

	summary := t.Summary()
	detail := domainThread.ThreadDetail{
		ThreadSummary: toSummary(summary),
		AdminIDs:      summary.AdminIDs,
	}
	for _, msg := range t.Messages() {
		detail.Items = append(detail.Items, domainThread.MessageView{
			ID:        msg.ID,
			UserID:    msg.UserID,
			Kind:      msg.Kind,
			Text:      msg.Text,
			MediaURL:  msg.MediaURL,
			Timestamp: msg.Timestamp,
		})
	}
	return detail, nil
}

func toSummary(s chat.Summary) domainThread.ThreadSummary {
	return domainThread.ThreadSummary{
		ID:             s.ID,
		Kind:           string(s.Kind),
		Members:        s.Members,
		Departed:       s.Departed,
		Messages:       s.Messages,
		LastActivityAt: s.LastActivityAt,
		Muted:          s.Muted,
		Pinned:         s.Pinned,
		Named:          s.Named,
		Pending:        s.Pending,
		IsGroup:        s.IsGroup,
		IsTyping:       s.IsTyping,
	}
}
