package routes

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/skillstream/mediacore/artifact"
	"github.com/skillstream/mediacore/dataservice/mocks"
	"github.com/skillstream/mediacore/model"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		size    int64
		want    byteRange
		wantErr bool
	}{
		{"closed", "bytes=100-199", 1000, byteRange{100, 199, 100}, false},
		{"open ended", "bytes=900-", 1000, byteRange{900, 999, 100}, false},
		{"whole file", "bytes=0-", 1000, byteRange{0, 999, 1000}, false},
		{"end clamped", "bytes=0-5000", 1000, byteRange{0, 999, 1000}, false},
		{"single byte", "bytes=0-0", 1000, byteRange{0, 0, 1}, false},
		{"last byte", "bytes=999-999", 1000, byteRange{999, 999, 1}, false},
		{"start past eof", "bytes=1000-", 1000, byteRange{}, true},
		{"inverted", "bytes=5-2", 1000, byteRange{}, true},
		{"no prefix", "100-199", 1000, byteRange{}, true},
		{"suffix form", "bytes=-500", 1000, byteRange{}, true},
		{"garbage", "bytes=abc-def", 1000, byteRange{}, true},
		{"empty spec", "bytes=", 1000, byteRange{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRange(tt.header, tt.size)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type streamEnv struct {
	assets     *mocks.AssetDatabase
	renditions *mocks.RenditionDatabase
	store      *artifact.DiskStore
	router     *mux.Router
}

func newStreamEnv(t *testing.T) *streamEnv {
	t.Helper()
	store, err := artifact.NewDiskStore(t.TempDir(), "/files")
	assert.NoError(t, err)

	env := &streamEnv{
		assets:     new(mocks.AssetDatabase),
		renditions: new(mocks.RenditionDatabase),
		store:      store,
	}
	h := &Handler{Assets: env.assets, Renditions: env.renditions, Store: store}
	env.router = mux.NewRouter()
	env.router.HandleFunc("/assets/{asset_id}/stream", h.StreamHandler).Methods(http.MethodGet, http.MethodHead)
	return env
}

func (e *streamEnv) put(t *testing.T, path string, body []byte) {
	t.Helper()
	_, err := e.store.Save(context.Background(), path, bytes.NewReader(body))
	assert.NoError(t, err)
}

func (e *streamEnv) get(rangeHeader, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func sourceAsset() model.MediaAsset {
	return model.MediaAsset{
		AssetID:    "asset1",
		SourcePath: "asset1/original.mp4",
		Status:     model.StatusCompleted,
	}
}

func TestStreamFullFile(t *testing.T) {
	env := newStreamEnv(t)
	body := bytes.Repeat([]byte("v"), 1000)
	env.put(t, "asset1/original.mp4", body)
	env.assets.On("GetAsset", "asset1").Return(sourceAsset(), nil)

	rec := env.get("", "/assets/asset1/stream")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "1000", rec.Header().Get("Content-Length"))
	assert.Equal(t, body, rec.Body.Bytes())
}

func TestStreamPartialContent(t *testing.T) {
	env := newStreamEnv(t)
	body := make([]byte, 1000)
	for i := range body {
		body[i] = byte(i % 251)
	}
	env.put(t, "asset1/original.mp4", body)
	env.assets.On("GetAsset", "asset1").Return(sourceAsset(), nil)

	rec := env.get("bytes=100-199", "/assets/asset1/stream")

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 100-199/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "100", rec.Header().Get("Content-Length"))
	assert.Equal(t, body[100:200], rec.Body.Bytes())
}

func TestStreamOpenEndedRange(t *testing.T) {
	env := newStreamEnv(t)
	body := bytes.Repeat([]byte("x"), 1000)
	env.put(t, "asset1/original.mp4", body)
	env.assets.On("GetAsset", "asset1").Return(sourceAsset(), nil)

	rec := env.get("bytes=900-", "/assets/asset1/stream")

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 900-999/1000", rec.Header().Get("Content-Range"))
	assert.Len(t, rec.Body.Bytes(), 100)
}

func TestStreamUnsatisfiableRange(t *testing.T) {
	env := newStreamEnv(t)
	env.put(t, "asset1/original.mp4", bytes.Repeat([]byte("x"), 1000))
	env.assets.On("GetAsset", "asset1").Return(sourceAsset(), nil)

	for _, header := range []string{"bytes=1000-", "bytes=1200-1300", "bytes=5-2", "bytes=abc"} {
		rec := env.get(header, "/assets/asset1/stream")
		assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code, "header %q", header)
		assert.Equal(t, "bytes */1000", rec.Header().Get("Content-Range"), "header %q", header)
	}
}

func TestStreamRendition(t *testing.T) {
	env := newStreamEnv(t)
	env.put(t, "asset1/renditions/720p.mp4", []byte("720p bytes"))
	env.assets.On("GetAsset", "asset1").Return(sourceAsset(), nil)
	env.renditions.On("GetRendition", "asset1", "720p").Return(model.Rendition{
		AssetID: "asset1", Quality: "720p", Path: "asset1/renditions/720p.mp4",
	}, nil)

	rec := env.get("", "/assets/asset1/stream?quality=720p")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "720p bytes", rec.Body.String())

	rec = env.get("bytes=0-3", "/assets/asset1/stream?quality=720p")

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 0-3/10", rec.Header().Get("Content-Range"))
	assert.Equal(t, "720p", rec.Body.String())
}

// A missing requested quality falls back to the best stored rendition
// rather than erroring out.
func TestStreamQualityFallsBackToHighestRendition(t *testing.T) {
	env := newStreamEnv(t)
	env.put(t, "asset1/renditions/360p.mp4", []byte("360p bytes"))
	env.put(t, "asset1/renditions/720p.mp4", []byte("720p bytes"))
	env.assets.On("GetAsset", "asset1").Return(sourceAsset(), nil)
	env.renditions.On("GetRendition", "asset1", "1080p").Return(model.Rendition{}, errors.New("couldn't find rendition"))
	env.renditions.On("ListRenditions", "asset1").Return([]model.Rendition{
		{AssetID: "asset1", Quality: "360p", Path: "asset1/renditions/360p.mp4", Bitrate: 800000},
		{AssetID: "asset1", Quality: "720p", Path: "asset1/renditions/720p.mp4", Bitrate: 2500000},
	}, nil)

	rec := env.get("", "/assets/asset1/stream?quality=1080p")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "720p bytes", rec.Body.String())
}

// With no quality requested and the original gone (deleted after
// processing), the highest rendition is served instead.
func TestStreamDeletedOriginalFallsBack(t *testing.T) {
	env := newStreamEnv(t)
	env.put(t, "asset1/renditions/480p.mp4", []byte("480p bytes"))
	env.assets.On("GetAsset", "asset1").Return(sourceAsset(), nil)
	env.renditions.On("ListRenditions", "asset1").Return([]model.Rendition{
		{AssetID: "asset1", Quality: "480p", Path: "asset1/renditions/480p.mp4", Bitrate: 1400000},
	}, nil)

	rec := env.get("", "/assets/asset1/stream")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "480p bytes", rec.Body.String())
}

func TestStreamAssetNotFound(t *testing.T) {
	env := newStreamEnv(t)
	env.assets.On("GetAsset", "nope").Return(model.MediaAsset{}, errors.New("couldn't find asset"))

	rec := env.get("", "/assets/nope/stream")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "asset not found"))
}

func TestStreamNoPlayableFile(t *testing.T) {
	env := newStreamEnv(t)
	env.assets.On("GetAsset", "asset1").Return(sourceAsset(), nil)
	env.renditions.On("ListRenditions", "asset1").Return([]model.Rendition{}, nil)

	rec := env.get("", "/assets/asset1/stream")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "video/mp4", contentTypeFor("a/b.mp4"))
	assert.Equal(t, "video/webm", contentTypeFor("a/b.WEBM"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("a/b.bin"))
}
