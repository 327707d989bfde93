package attachment

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/fintari/gramthread/config"
	pkgError "github.com/fintari/gramthread/pkg/error"

	// Some profiles deliver webp photos.
	_ "golang.org/x/image/webp"
)

// Source describes where attachment bytes come from. Exactly one of Data,
// Path or URL should be set; Data wins over Path, Path over URL.
type Source struct {
	Path string
	URL  string
	Data []byte
}

func (s Source) empty() bool {
	return len(s.Data) == 0 && strings.TrimSpace(s.Path) == "" && strings.TrimSpace(s.URL) == ""
}

// Media is a resolved attachment ready for broadcast.
type Media struct {
	Data []byte
	Mime string
}

// ResolvePhoto resolves a photo source into normalized JPEG bytes: decode,
// bound the longest edge, re-encode. Anything that cannot be read or decoded
// fails with an AttachmentError before any network call happens.
func ResolvePhoto(src Source) (Media, error) {
	raw, err := resolveBytes(src, config.AttachmentMaxPhotoSize)
	if err != nil {
		return Media{}, err
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return Media{}, pkgError.AttachmentError(fmt.Sprintf("failed to decode photo: %v", err))
	}

	maxEdge := config.AttachmentMaxPhotoEdge
	if img.Bounds().Dx() > maxEdge || img.Bounds().Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return Media{}, pkgError.AttachmentError(fmt.Sprintf("failed to encode photo: %v", err))
	}

	logrus.WithFields(logrus.Fields{
		"in":  humanize.Bytes(uint64(len(raw))),
		"out": humanize.Bytes(uint64(buf.Len())),
	}).Debug("[ATTACHMENT] Photo normalized")

	return Media{Data: buf.Bytes(), Mime: "image/jpeg"}, nil
}

// ResolveVoice resolves a voice source into raw audio bytes. The payload is
// sniffed and must carry an audio MIME type.
func ResolveVoice(src Source) (Media, error) {
	raw, err := resolveBytes(src, config.AttachmentMaxVoiceSize)
	if err != nil {
		return Media{}, err
	}

	mtype := mimetype.Detect(raw)
	if !strings.HasPrefix(mtype.String(), "audio/") && mtype.String() != "application/ogg" {
		return Media{}, pkgError.AttachmentError(fmt.Sprintf("voice payload is %s, expected audio", mtype.String()))
	}

	return Media{Data: raw, Mime: mtype.String()}, nil
}

func resolveBytes(src Source, limit int64) ([]byte, error) {
	switch {
	case src.empty():
		return nil, pkgError.AttachmentError("attachment source is empty")

	case len(src.Data) > 0:
		if int64(len(src.Data)) > limit {
			return nil, oversize(int64(len(src.Data)), limit)
		}
		return src.Data, nil

	case strings.TrimSpace(src.Path) != "":
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, pkgError.AttachmentError(fmt.Sprintf("failed to read %s: %v", src.Path, err))
		}
		if int64(len(data)) > limit {
			return nil, oversize(int64(len(data)), limit)
		}
		return data, nil

	default:
		return download(strings.TrimSpace(src.URL), limit)
	}
}

func download(url string, limit int64) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := fasthttp.DoTimeout(req, resp, config.AttachmentDownloadTimeout); err != nil {
		return nil, pkgError.AttachmentError(fmt.Sprintf("failed to download %s: %v", url, err))
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, pkgError.AttachmentError(fmt.Sprintf("failed to download %s: status %d", url, resp.StatusCode()))
	}

	body := resp.Body()
	if int64(len(body)) > limit {
		return nil, oversize(int64(len(body)), limit)
	}

	// resp.Body is reused once the response is released.
	return append([]byte(nil), body...), nil
}

func oversize(got, limit int64) error {
	return pkgError.AttachmentError(fmt.Sprintf(
		"attachment is %s, limit is %s", humanize.Bytes(uint64(got)), humanize.Bytes(uint64(limit))))
}
