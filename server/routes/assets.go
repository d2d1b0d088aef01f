package routes

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	guuid "github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/skillstream/mediacore/artifact"
	"github.com/skillstream/mediacore/config"
	"github.com/skillstream/mediacore/dataservice"
	"github.com/skillstream/mediacore/internal"
	"github.com/skillstream/mediacore/media"
	"github.com/skillstream/mediacore/model"
	"github.com/skillstream/mediacore/pipeline"
	"github.com/skillstream/mediacore/util"
)

// allowedExtensions maps upload file extensions to their MIME type.
var allowedExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
}

// Handler carries the dependencies of the asset routes.
type Handler struct {
	Assets     dataservice.AssetDatabase
	Renditions dataservice.RenditionDatabase
	Store      artifact.Store
	Orch       *pipeline.Orchestrator
	Tools      *media.Toolset
	Cfg        config.Config
}

// UploadHandler accepts a multipart upload, persists the asset record and
// kicks off background processing.
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.Cfg.MaxUploadMB)<<20)
	clientFile, header, err := r.FormFile("inputfile")
	if err != nil {
		util.WriteError(fmt.Sprintf("please upload a file of size less than %dMB", h.Cfg.MaxUploadMB), http.StatusRequestEntityTooLarge, w)
		return
	}
	defer clientFile.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		util.WriteError("unsupported file type", http.StatusUnsupportedMediaType, w)
		return
	}

	id := guuid.New().String()
	sourcePath := path.Join(id, "original"+ext)

	storedPath, err := h.Store.Save(r.Context(), sourcePath, clientFile)
	if err != nil {
		log.Error("Storing upload: ", err)
		util.WriteError("could not store uploaded file", http.StatusInternalServerError, w)
		return
	}

	asset := model.MediaAsset{
		AssetID:     id,
		Filename:    header.Filename,
		SourcePath:  storedPath,
		Size:        header.Size,
		ContentType: contentType,
		Status:      model.StatusUploading,
		CreatedAt:   time.Now().Unix(),
		UpdatedAt:   time.Now().Unix(),
	}
	if err := h.Assets.InsertAsset(asset); err != nil {
		util.WriteError("could not create asset", http.StatusInternalServerError, w)
		return
	}

	go h.Orch.Process(context.Background(), model.ProcessingJob{
		AssetID:        id,
		InputPath:      storedPath,
		Qualities:      h.Cfg.Qualities,
		Thumbnails:     true,
		DeleteOriginal: h.Cfg.DeleteOriginal,
	})

	util.WriteResponseWithStatus(map[string]interface{}{
		"asset_id": id,
		"status":   asset.Status,
	}, http.StatusCreated, w)
}

// StatusHandler reports the latest durable state of an asset, plus live
// per-quality progress while it is processing.
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assetID := vars["asset_id"]

	asset, err := h.Assets.GetAsset(assetID)
	if err != nil {
		util.WriteError("asset not found", http.StatusNotFound, w)
		return
	}

	data := map[string]interface{}{
		"asset_id":    asset.AssetID,
		"filename":    asset.Filename,
		"status":      asset.Status,
		"status_code": internal.AssetStatusCode(asset.Status),
		"duration":    asset.Duration,
	}
	switch asset.Status {
	case model.StatusProcessing:
		data["progress"] = h.Orch.Progress(assetID)
	case model.StatusFailed:
		data["error"] = asset.ProcessingError
	case model.StatusCompleted:
		data["qualities"] = asset.Qualities
		if asset.ThumbnailPath != "" {
			data["thumbnail_url"] = h.Store.URL(asset.ThumbnailPath)
		}
	}
	util.WriteResponse(data, w)
}

// DeleteHandler removes the asset record, every rendition and the
// thumbnails, leaving no orphaned bytes.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assetID := vars["asset_id"]

	if !h.Assets.IfAssetExists(assetID) {
		util.WriteError("asset not found", http.StatusNotFound, w)
		return
	}
	if err := h.Orch.Delete(r.Context(), assetID); err != nil {
		log.Error("Deleting asset: ", err)
		util.WriteError("could not delete asset", http.StatusInternalServerError, w)
		return
	}
	util.WriteResponse(map[string]interface{}{
		"asset_id": assetID,
		"deleted":  true,
	}, w)
}

// ReprocessHandler clears prior renditions and runs the pipeline again.
func (h *Handler) ReprocessHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assetID := vars["asset_id"]

	if !h.Assets.IfAssetExists(assetID) {
		util.WriteError("asset not found", http.StatusNotFound, w)
		return
	}
	if err := h.Orch.Reprocess(r.Context(), assetID, h.Cfg.Qualities, h.Cfg.DeleteOriginal); err != nil {
		log.Error("Reprocessing asset: ", err)
		util.WriteError("could not reprocess asset", http.StatusConflict, w)
		return
	}
	util.WriteResponse(map[string]interface{}{
		"asset_id": assetID,
		"status":   model.StatusProcessing,
	}, w)
}

// HealthHandler verifies the encoder tools are installed and the
// artifact store is reachable, independent of any specific job.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Tools.Check(); err != nil {
		util.WriteError("encoder tools unavailable", http.StatusServiceUnavailable, w)
		return
	}
	if _, err := h.Store.Exists(r.Context(), ".healthcheck"); err != nil {
		log.Error("Artifact store unreachable: ", err)
		util.WriteError("artifact store unreachable", http.StatusServiceUnavailable, w)
		return
	}
	util.WriteResponse(map[string]interface{}{"status": "ok"}, w)
}
