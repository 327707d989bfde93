package attachment

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fintari/gramthread/config"
	pkgError "github.com/fintari/gramthread/pkg/error"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// Minimal RIFF/WAVE header, enough for MIME sniffing.
func wavBytes() []byte {
	return []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00")
}

func assertAttachmentError(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
	typed, ok := err.(pkgError.GenericError)
	assert.True(t, ok)
	assert.Equal(t, "ATTACHMENT_ERROR", typed.ErrCode())
	assert.Equal(t, 400, typed.StatusCode())
}

func Test_ResolvePhoto_From_Bytes(t *testing.T) {
	media, err := ResolvePhoto(Source{Data: pngBytes(t, 64, 48)})

	assert.NoError(t, err)
	assert.Equal(t, "image/jpeg", media.Mime)
	assert.NotEmpty(t, media.Data)

	img, _, err := image.Decode(bytes.NewReader(media.Data))
	assert.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func Test_ResolvePhoto_Bounds_Longest_Edge(t *testing.T) {
	prev := config.AttachmentMaxPhotoEdge
	config.AttachmentMaxPhotoEdge = 100
	t.Cleanup(func() { config.AttachmentMaxPhotoEdge = prev })

	media, err := ResolvePhoto(Source{Data: pngBytes(t, 400, 200)})
	assert.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(media.Data))
	assert.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func Test_ResolvePhoto_From_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	assert.NoError(t, os.WriteFile(path, pngBytes(t, 32, 32), 0o644))

	media, err := ResolvePhoto(Source{Path: path})
	assert.NoError(t, err)
	assert.Equal(t, "image/jpeg", media.Mime)
}

func Test_ResolvePhoto_Missing_File(t *testing.T) {
	_, err := ResolvePhoto(Source{Path: "/no/such/photo.png"})
	assertAttachmentError(t, err)
}

func Test_ResolvePhoto_Empty_Source(t *testing.T) {
	_, err := ResolvePhoto(Source{})
	assertAttachmentError(t, err)
}

func Test_ResolvePhoto_Not_An_Image(t *testing.T) {
	_, err := ResolvePhoto(Source{Data: []byte("definitely not pixels")})
	assertAttachmentError(t, err)
}

func Test_ResolvePhoto_Oversize(t *testing.T) {
	prev := config.AttachmentMaxPhotoSize
	config.AttachmentMaxPhotoSize = 16
	t.Cleanup(func() { config.AttachmentMaxPhotoSize = prev })

	_, err := ResolvePhoto(Source{Data: pngBytes(t, 64, 64)})
	assertAttachmentError(t, err)
}

func Test_ResolveVoice_From_Bytes(t *testing.T) {
	media, err := ResolveVoice(Source{Data: wavBytes()})

	assert.NoError(t, err)
	assert.Equal(t, wavBytes(), media.Data)
	assert.Contains(t, media.Mime, "audio")
}

func Test_ResolveVoice_Rejects_Non_Audio(t *testing.T) {
	_, err := ResolveVoice(Source{Data: []byte("plain text payload")})
	assertAttachmentError(t, err)
}

func Test_ResolveVoice_Empty_Source(t *testing.T) {
	_, err := ResolveVoice(Source{})
	assertAttachmentError(t, err)
}

func Test_Data_Wins_Over_Path(t *testing.T) {
	// The path is unreadable, but bytes take precedence so it is never opened.
	media, err := ResolveVoice(Source{Data: wavBytes(), Path: "/no/such/voice.ogg"})
	assert.NoError(t, err)
	assert.Equal(t, wavBytes(), media.Data)
}
