package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainThread "github.com/fintari/gramthread/domains/thread"
	pkgError "github.com/fintari/gramthread/pkg/error"
)

func ValidateSendText(ctx context.Context, request domainThread.SendMessageRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ThreadID, validation.Required),
		validation.Field(&request.Message, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateSendPhoto(ctx context.Context, request domainThread.SendPhotoRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ThreadID, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if request.PhotoPath == "" && request.PhotoURL == "" && len(request.PhotoBytes) == 0 {
		return pkgError.ValidationError("one of photo_path, photo_url or photo_bytes is required")
	}

	return nil
}

func ValidateSendVoice(ctx context.Context, request domainThread.SendVoiceRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ThreadID, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if request.VoicePath == "" && request.VoiceURL == "" && len(request.VoiceBytes) == 0 {
		return pkgError.ValidationError("one of voice_path, voice_url or voice_bytes is required")
	}

	return nil
}

func ValidateTyping(ctx context.Context, request domainThread.TypingRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ThreadID, validation.Required),
		validation.Field(&request.DurationMs, validation.Min(0)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateItem(ctx context.Context, request domainThread.ItemRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ThreadID, validation.Required),
		validation.Field(&request.ItemID, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
