package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	key         string
	data        []byte
	contentType string
}

type recordingStore struct {
	puts         []putCall
	dispositions map[string]string
	putErr       error
	patchErr     error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{dispositions: map[string]string{}}
}

func (s *recordingStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	s.puts = append(s.puts, putCall{key: key, data: data, contentType: contentType})
	return s.putErr
}

func (s *recordingStore) SetContentDisposition(_ context.Context, key, disposition string) error {
	if s.patchErr != nil {
		return s.patchErr
	}
	s.dispositions[key] = disposition
	return nil
}

func (s *recordingStore) PublicURL(key string) string {
	return "https://storage.googleapis.com/test-bucket/" + key
}

func (s *recordingStore) calls() int { return len(s.puts) + len(s.dispositions) }

func solidImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidImage(w, h), nil))
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(w, h)))
	return buf.Bytes()
}

func TestLargeJPEGBecomesCanvasPNG(t *testing.T) {
	store := newRecordingStore()
	n := NewNormalizer(store, nil)

	res, err := n.Normalize(context.Background(), Upload{
		Filename:    "../../evil.png",
		ContentType: "image/jpeg",
		Content:     encodeJPEG(t, 1200, 800),
	})
	require.NoError(t, err)
	require.Len(t, store.puts, 1)

	put := store.puts[0]
	assert.Equal(t, res.ResourceID+".png", put.key)
	assert.Equal(t, "image/png", put.contentType)
	assert.Equal(t, "https://storage.googleapis.com/test-bucket/"+put.key, res.URL)
	assert.Equal(t, `attachment; filename="evil.png"`, store.dispositions[put.key])

	out, format, err := image.Decode(bytes.NewReader(put.data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, CanvasWidth, out.Bounds().Dx())
	assert.Equal(t, CanvasHeight, out.Bounds().Dy())

	// The fitted image is 640 wide and shifted up, so the top rows are painted
	// and the bottom of the canvas stays transparent.
	_, _, _, topAlpha := out.At(320, 10).RGBA()
	_, _, _, bottomAlpha := out.At(320, 630).RGBA()
	assert.NotZero(t, topAlpha)
	assert.Zero(t, bottomAlpha)
}

func TestShrinkToFitKeepsAspectRatio(t *testing.T) {
	fitted := shrinkToFit(solidImage(1200, 800))
	b := fitted.Bounds()
	assert.Equal(t, 640, b.Dx())
	assert.InDelta(t, 800.0*640.0/1200.0, float64(b.Dy()), 1.0)

	tall := shrinkToFit(solidImage(500, 2000)).Bounds()
	assert.Equal(t, 640, tall.Dy())
	assert.InDelta(t, 500.0*640.0/2000.0, float64(tall.Dx()), 1.0)
}

func TestSmallImagesAreNotUpscaled(t *testing.T) {
	for _, size := range [][2]int{{100, 50}, {640, 640}, {639, 10}} {
		b := shrinkToFit(solidImage(size[0], size[1])).Bounds()
		assert.Equal(t, size[0], b.Dx())
		assert.Equal(t, size[1], b.Dy())
	}

	store := newRecordingStore()
	_, err := NewNormalizer(store, nil).Normalize(context.Background(), Upload{Filename: "icon.png", ContentType: "image/png", Content: encodePNG(t, 100, 50)})
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(store.puts[0].data))
	require.NoError(t, err)
	assert.Equal(t, CanvasWidth, cfg.Width)
	assert.Equal(t, CanvasHeight, cfg.Height)
}

func TestPlacement(t *testing.T) {
	assert.Equal(t, image.Pt(0, -107), Placement(640, 426))
	assert.Equal(t, image.Pt(270, -295), Placement(100, 50))
	assert.Equal(t, image.Pt(0, 0), Placement(640, 640))
	assert.Equal(t, image.Pt(160, 0), Placement(320, 640))
}

func TestPDFPassesThroughUnchanged(t *testing.T) {
	store := newRecordingStore()
	content := []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\nbinary body\x00\x01\x02")

	res, err := NewNormalizer(store, nil).Normalize(context.Background(), Upload{Filename: "Lecture 01.pdf", ContentType: "application/pdf", Content: content})
	require.NoError(t, err)
	require.Len(t, store.puts, 1)
	assert.Equal(t, content, store.puts[0].data)
	assert.Equal(t, res.ResourceID+".pdf", store.puts[0].key)
	assert.Equal(t, "application/pdf", store.puts[0].contentType)
	assert.Equal(t, `attachment; filename="Lecture_01.pdf"`, store.dispositions[store.puts[0].key])
}

func TestUnsupportedTypeTouchesNoStorage(t *testing.T) {
	store := newRecordingStore()

	for _, ct := range []string{"text/plain", "", "application/zip", "application/pdf; charset=binary"} {
		_, err := NewNormalizer(store, nil).Normalize(context.Background(), Upload{Filename: "notes.txt", ContentType: ct, Content: []byte("hello")})
		assert.ErrorIs(t, err, ErrUnsupportedType, "content type %q", ct)
	}
	assert.Zero(t, store.calls())
}

func TestUndecodableImageIsTransformError(t *testing.T) {
	store := newRecordingStore()

	_, err := NewNormalizer(store, nil).Normalize(context.Background(), Upload{Filename: "broken.png", ContentType: "image/png", Content: []byte("not an image")})
	assert.ErrorIs(t, err, ErrTransform)
	assert.Zero(t, store.calls())
}

func TestStorageFailures(t *testing.T) {
	store := newRecordingStore()
	store.putErr = errors.New("bucket gone")
	_, err := NewNormalizer(store, nil).Normalize(context.Background(), Upload{Filename: "a.pdf", ContentType: "application/pdf", Content: []byte("%PDF")})
	assert.ErrorIs(t, err, ErrStorage)
	assert.Empty(t, store.dispositions)

	store = newRecordingStore()
	store.patchErr = errors.New("patch rejected")
	_, err = NewNormalizer(store, nil).Normalize(context.Background(), Upload{Filename: "a.pdf", ContentType: "application/pdf", Content: []byte("%PDF")})
	assert.ErrorIs(t, err, ErrStorage)
	assert.Len(t, store.puts, 1, "uploaded object is left in place")
}

func TestGeneratedIDsAreUnique(t *testing.T) {
	store := newRecordingStore()
	n := NewNormalizer(store, nil)
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		res, err := n.Normalize(context.Background(), Upload{Filename: "a.pdf", ContentType: "application/pdf", Content: []byte("%PDF")})
		require.NoError(t, err)
		_, dup := seen[res.ResourceID]
		require.False(t, dup, "duplicate id %s at iteration %d", res.ResourceID, i)
		seen[res.ResourceID] = struct{}{}
	}
}

type countingObserver map[string]int

func (o countingObserver) ObserveUpload(kind, result string) { o[kind+"/"+result]++ }

func TestObserverRecordsOutcome(t *testing.T) {
	obs := countingObserver{}
	n := NewNormalizer(newRecordingStore(), obs)

	_, _ = n.Normalize(context.Background(), Upload{ContentType: "application/pdf", Content: []byte("%PDF")})
	_, _ = n.Normalize(context.Background(), Upload{ContentType: "text/plain"})
	assert.Equal(t, 1, obs["pdf/ok"])
	assert.Equal(t, 1, obs["unsupported/rejected"])
}
