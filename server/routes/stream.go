package routes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/skillstream/mediacore/artifact"
	"github.com/skillstream/mediacore/model"
	"github.com/skillstream/mediacore/util"
)

var errMalformedRange = errors.New("malformed range")

// byteRange is a parsed, validated Range request.
type byteRange struct {
	start  int64
	end    int64
	length int64
}

// parseRange parses "bytes=<start>-<end>" against the given file size.
// An omitted end defaults to size-1; an end beyond the file is clamped.
// start > end or start >= size is unsatisfiable and maps to 416.
func parseRange(header string, size int64) (byteRange, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return byteRange{}, errMalformedRange
	}
	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok || startStr == "" {
		return byteRange{}, errMalformedRange
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return byteRange{}, errMalformedRange
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < 0 {
			return byteRange{}, errMalformedRange
		}
	}
	if end > size-1 {
		end = size - 1
	}
	if start > end || start >= size {
		return byteRange{}, errMalformedRange
	}
	return byteRange{start: start, end: end, length: end - start + 1}, nil
}

// StreamHandler serves a stored rendition (or the original) with byte
// range support for seeking and adaptive players.
func (h *Handler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assetID := vars["asset_id"]
	quality := r.URL.Query().Get("quality")

	asset, err := h.Assets.GetAsset(assetID)
	if err != nil {
		util.WriteError("asset not found", http.StatusNotFound, w)
		return
	}

	streamPath, err := h.resolveStreamPath(r.Context(), asset, quality)
	if err != nil {
		util.WriteError("no playable file for asset", http.StatusNotFound, w)
		return
	}

	file, size, err := h.Store.Open(r.Context(), streamPath)
	if err != nil {
		// The file may have vanished between the record lookup and the
		// open; that is a 404, not a 500.
		if err == artifact.ErrNotFound {
			util.WriteError("file not found", http.StatusNotFound, w)
		} else {
			log.Error("Opening stream: ", err)
			util.WriteError("could not open file", http.StatusInternalServerError, w)
		}
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentTypeFor(streamPath))
	w.Header().Set("Accept-Ranges", "bytes")

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, file); err != nil {
			log.Error("Streaming file: ", err)
		}
		return
	}

	br, err := parseRange(rangeHeader, size)
	if err != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	if _, err := file.Seek(br.start, io.SeekStart); err != nil {
		log.Error("Seeking stream: ", err)
		util.WriteError("could not read file", http.StatusInternalServerError, w)
		return
	}
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", br.start, br.end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(br.length, 10))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := io.CopyN(w, file, br.length); err != nil && err != io.EOF {
		log.Error("Streaming range: ", err)
	}
}

// resolveStreamPath picks the file to serve. A requested rendition that
// does not exist falls back to the highest available rendition, then to
// the original. With no quality requested the original is preferred,
// falling back to the highest rendition when the original was deleted
// after processing.
func (h *Handler) resolveStreamPath(ctx context.Context, asset model.MediaAsset, quality string) (string, error) {
	if quality != "" {
		if ren, err := h.Renditions.GetRendition(asset.AssetID, quality); err == nil {
			return ren.Path, nil
		}
		if p, err := h.highestRendition(asset.AssetID); err == nil {
			return p, nil
		}
		return h.originalPath(ctx, asset)
	}
	if p, err := h.originalPath(ctx, asset); err == nil {
		return p, nil
	}
	return h.highestRendition(asset.AssetID)
}

func (h *Handler) originalPath(ctx context.Context, asset model.MediaAsset) (string, error) {
	if asset.SourcePath == "" {
		return "", artifact.ErrNotFound
	}
	if ok, err := h.Store.Exists(ctx, asset.SourcePath); err != nil || !ok {
		return "", artifact.ErrNotFound
	}
	return asset.SourcePath, nil
}

func (h *Handler) highestRendition(assetID string) (string, error) {
	rens, err := h.Renditions.ListRenditions(assetID)
	if err != nil || len(rens) == 0 {
		return "", artifact.ErrNotFound
	}
	sort.Slice(rens, func(i, j int) bool {
		return rens[i].Bitrate > rens[j].Bitrate
	})
	return rens[0].Path, nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	case ".avi":
		return "video/x-msvideo"
	default:
		return "application/octet-stream"
	}
}
