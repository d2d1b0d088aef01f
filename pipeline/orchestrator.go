// Package pipeline drives an uploaded original through metadata
// extraction, per-quality transcoding and thumbnail generation, updating
// the asset record through its state machine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/skillstream/mediacore/artifact"
	"github.com/skillstream/mediacore/dataservice"
	"github.com/skillstream/mediacore/media"
	"github.com/skillstream/mediacore/model"
)

// Options configures an Orchestrator.
type Options struct {
	// ScratchDir is the local working directory for encode input/output.
	ScratchDir string
	// MaxTranscodes bounds concurrent encoder processes across all jobs.
	MaxTranscodes int64
	// JobTimeout bounds each external process invocation.
	JobTimeout time.Duration
	// Heartbeat is how often a live job refreshes the asset's updated_at,
	// keeping slow or queued work out of the stale sweep. Must be well
	// under the sweep's max age.
	Heartbeat  time.Duration
	Thumbnails media.ThumbnailOptions
}

// Orchestrator runs processing jobs. The semaphore is shared across all
// in-flight jobs, so host CPU usage stays bounded no matter how many
// uploads arrive at once.
type Orchestrator struct {
	assets     dataservice.AssetDatabase
	renditions dataservice.RenditionDatabase
	store      artifact.Store
	prober     *media.Prober
	transcoder *media.Transcoder
	thumbs     *media.ThumbnailGenerator
	sem        *semaphore.Weighted
	opts       Options

	mu       sync.Mutex
	progress map[string]map[string]float64
}

// New returns an Orchestrator.
func New(assets dataservice.AssetDatabase, renditions dataservice.RenditionDatabase, store artifact.Store,
	prober *media.Prober, transcoder *media.Transcoder, thumbs *media.ThumbnailGenerator, opts Options) *Orchestrator {
	if opts.MaxTranscodes <= 0 {
		opts.MaxTranscodes = 2
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 10 * time.Minute
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 30 * time.Second
	}
	if opts.ScratchDir == "" {
		opts.ScratchDir = os.TempDir()
	}
	if opts.Thumbnails.Count <= 0 {
		opts.Thumbnails = media.DefaultThumbnailOptions()
	}
	return &Orchestrator{
		assets:     assets,
		renditions: renditions,
		store:      store,
		prober:     prober,
		transcoder: transcoder,
		thumbs:     thumbs,
		sem:        semaphore.NewWeighted(opts.MaxTranscodes),
		opts:       opts,
		progress:   make(map[string]map[string]float64),
	}
}

// RenditionPath is where a quality rendition lives in the artifact store.
func RenditionPath(assetID, quality string) string {
	return path.Join(assetID, "renditions", quality+".mp4")
}

// ThumbnailPath is where the i-th (1-based) thumbnail lives in the
// artifact store.
func ThumbnailPath(assetID string, i int, format string) string {
	return path.Join(assetID, "thumbnails", fmt.Sprintf("thumb_%d.%s", i, format))
}

// Process runs the full pipeline for one job. It is meant to run as a
// background task per upload; all outcomes are folded into the asset and
// rendition records.
func (o *Orchestrator) Process(ctx context.Context, job model.ProcessingJob) {
	logger := log.WithField("asset", job.AssetID)

	if err := o.assets.UpdateAssetStatus(job.AssetID, model.StatusProcessing); err != nil {
		logger.Error("Entering processing state: ", err)
		return
	}
	defer o.clearProgress(job.AssetID)

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go o.runHeartbeat(hbCtx, job.AssetID)

	scratch := filepath.Join(o.opts.ScratchDir, job.AssetID)
	defer os.RemoveAll(scratch)

	inputPath, err := o.stageInput(ctx, job, scratch)
	if err != nil {
		logger.Error("Staging input: ", err)
		o.fail(job.AssetID, "uploaded file could not be read")
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, o.opts.JobTimeout)
	info, err := o.prober.Probe(probeCtx, inputPath)
	cancel()
	if err != nil {
		// Raw tool diagnostics stay in server logs; the record gets a
		// short, user-safe reason.
		logger.Error("Probing input: ", err)
		if err == media.ErrNoVideoStream {
			o.fail(job.AssetID, "file contains no video stream")
		} else {
			o.fail(job.AssetID, "video file is unreadable or corrupt")
		}
		return
	}
	if err := o.assets.UpdateAssetDuration(job.AssetID, info.Duration); err != nil {
		logger.Error("Recording duration: ", err)
	}

	succeeded := o.transcodeAll(ctx, job, inputPath, info, scratch)
	if len(succeeded) == 0 {
		o.fail(job.AssetID, "transcoding failed for all qualities")
		return
	}

	if job.Thumbnails {
		// Thumbnails are cosmetic; their failure never fails the asset.
		if err := o.generateThumbnails(ctx, job.AssetID, inputPath, info.Duration, scratch); err != nil {
			logger.Warn("Thumbnail generation: ", err)
		}
	}

	if err := o.assets.SetAssetCompleted(job.AssetID, succeeded); err != nil {
		// ErrAssetNotProcessing means the job lost ownership mid-flight,
		// typically to the stale sweep. The failed verdict stands.
		if errors.Is(err, dataservice.ErrAssetNotProcessing) {
			logger.Warn("Asset left processing state mid-job, keeping its terminal state")
		} else {
			logger.Error("Marking asset completed: ", err)
		}
		return
	}
	logger.Info("Processing completed, qualities: ", succeeded)

	if job.DeleteOriginal {
		if err := o.store.Delete(ctx, job.InputPath); err != nil {
			// An orphaned original is a cleanup-job concern.
			logger.Warn("Deleting original: ", err)
		}
	}
}

// stageInput copies the stored original to a local scratch file the
// encoder can read. The store may be backed by object storage, so bytes
// are always pulled through the Store interface.
func (o *Orchestrator) stageInput(ctx context.Context, job model.ProcessingJob, scratch string) (string, error) {
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return "", err
	}
	src, _, err := o.store.Open(ctx, job.InputPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	local := filepath.Join(scratch, "source"+filepath.Ext(job.InputPath))
	dst, err := os.Create(local)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return local, dst.Close()
}

// transcodeAll runs one transcode per target quality, bounded by the
// shared semaphore. A single quality's failure is logged and skipped;
// the returned slice holds the qualities that produced a rendition.
func (o *Orchestrator) transcodeAll(ctx context.Context, job model.ProcessingJob, inputPath string, info media.MediaInfo, scratch string) []string {
	profiles := selectProfiles(job.Qualities, info.Height)

	results := make([]string, len(profiles))
	var wg sync.WaitGroup
	for i, profile := range profiles {
		wg.Add(1)
		go func(i int, profile media.Profile) {
			defer wg.Done()
			if err := o.sem.Acquire(ctx, 1); err != nil {
				log.WithField("asset", job.AssetID).Error("Acquiring encode slot: ", err)
				return
			}
			defer o.sem.Release(1)

			if err := o.transcodeOne(ctx, job.AssetID, inputPath, profile, info.Duration, scratch); err != nil {
				log.WithField("asset", job.AssetID).Errorf("Quality %s: %v", profile.Name, err)
				return
			}
			results[i] = profile.Name
		}(i, profile)
	}
	wg.Wait()

	var succeeded []string
	for _, q := range results {
		if q != "" {
			succeeded = append(succeeded, q)
		}
	}
	return succeeded
}

func (o *Orchestrator) transcodeOne(ctx context.Context, assetID, inputPath string, profile media.Profile, duration float64, scratch string) error {
	encodeCtx, cancel := context.WithTimeout(ctx, o.opts.JobTimeout)
	defer cancel()

	localOut := filepath.Join(scratch, profile.Name+".mp4")
	onProgress := func(p media.Progress) {
		if duration > 0 {
			o.setProgress(assetID, profile.Name, p.OutTime.Seconds()/duration*100)
		}
	}
	if err := o.transcoder.Transcode(encodeCtx, inputPath, localOut, profile, onProgress); err != nil {
		return err
	}

	f, err := os.Open(localOut)
	if err != nil {
		return fmt.Errorf("open encoded file: %w", err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat encoded file: %w", err)
	}

	storePath, err := o.store.Save(ctx, RenditionPath(assetID, profile.Name), f)
	if err != nil {
		return fmt.Errorf("save rendition: %w", err)
	}

	o.setProgress(assetID, profile.Name, 100)
	return o.renditions.InsertRendition(model.Rendition{
		RenditionID: uuid.New().String(),
		AssetID:     assetID,
		Quality:     profile.Name,
		Path:        storePath,
		Size:        stat.Size(),
		Bitrate:     profile.BitrateBits(),
		Resolution:  profile.Resolution(),
		CreatedAt:   time.Now().Unix(),
	})
}

func (o *Orchestrator) generateThumbnails(ctx context.Context, assetID, inputPath string, duration float64, scratch string) error {
	thumbCtx, cancel := context.WithTimeout(ctx, o.opts.JobTimeout)
	defer cancel()

	localDir := filepath.Join(scratch, "thumbnails")
	paths, err := o.thumbs.Generate(thumbCtx, inputPath, localDir, duration, o.opts.Thumbnails)
	if err != nil {
		return err
	}

	var primary string
	for i, localPath := range paths {
		f, err := os.Open(localPath)
		if err != nil {
			log.WithField("asset", assetID).Warn("Opening thumbnail: ", err)
			continue
		}
		storePath, err := o.store.Save(ctx, ThumbnailPath(assetID, i+1, o.opts.Thumbnails.Format), f)
		f.Close()
		if err != nil {
			log.WithField("asset", assetID).Warn("Saving thumbnail: ", err)
			continue
		}
		if primary == "" {
			primary = storePath
		}
	}
	if primary == "" {
		return fmt.Errorf("no thumbnail could be stored")
	}
	return o.assets.UpdateThumbnail(assetID, primary)
}

// Delete removes a media asset and every derived artifact. Bytes go
// first so a record is never deleted while its files remain orphaned
// forever; a re-run of Delete can finish a partially failed attempt.
func (o *Orchestrator) Delete(ctx context.Context, assetID string) error {
	asset, err := o.assets.GetAsset(assetID)
	if err != nil {
		return err
	}

	if err := o.deleteArtifacts(ctx, asset); err != nil {
		return err
	}
	if _, err := o.renditions.DeleteRenditions(assetID); err != nil {
		return err
	}
	return o.assets.DeleteAsset(assetID)
}

func (o *Orchestrator) deleteArtifacts(ctx context.Context, asset model.MediaAsset) error {
	rens, err := o.renditions.ListRenditions(asset.AssetID)
	if err != nil {
		return err
	}
	for _, r := range rens {
		if err := o.store.Delete(ctx, r.Path); err != nil && err != artifact.ErrNotFound {
			return fmt.Errorf("delete rendition %s: %w", r.Quality, err)
		}
	}
	for i := 1; i <= o.opts.Thumbnails.Count; i++ {
		p := ThumbnailPath(asset.AssetID, i, o.opts.Thumbnails.Format)
		if err := o.store.Delete(ctx, p); err != nil && err != artifact.ErrNotFound {
			return fmt.Errorf("delete thumbnail %d: %w", i, err)
		}
	}
	if asset.SourcePath != "" {
		if err := o.store.Delete(ctx, asset.SourcePath); err != nil && err != artifact.ErrNotFound {
			return fmt.Errorf("delete original: %w", err)
		}
	}
	return nil
}

// Reprocess clears prior renditions and runs the pipeline again for an
// existing asset. This is the only way back out of a terminal state.
func (o *Orchestrator) Reprocess(ctx context.Context, assetID string, qualities []string, deleteOriginal bool) error {
	asset, err := o.assets.GetAsset(assetID)
	if err != nil {
		return err
	}
	// A second worker on the same asset would race the first on the
	// store paths, not just the records.
	if asset.Status == model.StatusProcessing {
		return fmt.Errorf("asset %s is already processing", assetID)
	}
	exists, err := o.store.Exists(ctx, asset.SourcePath)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("original for asset %s no longer exists", assetID)
	}

	rens, err := o.renditions.ListRenditions(assetID)
	if err != nil {
		return err
	}
	for _, r := range rens {
		if err := o.store.Delete(ctx, r.Path); err != nil && err != artifact.ErrNotFound {
			return fmt.Errorf("clear rendition %s: %w", r.Quality, err)
		}
	}
	if _, err := o.renditions.DeleteRenditions(assetID); err != nil {
		return err
	}

	go o.Process(context.Background(), model.ProcessingJob{
		AssetID:        assetID,
		InputPath:      asset.SourcePath,
		Qualities:      qualities,
		Thumbnails:     true,
		DeleteOriginal: deleteOriginal,
	})
	return nil
}

func (o *Orchestrator) fail(assetID, reason string) {
	if err := o.assets.SetAssetFailed(assetID, reason); err != nil && !errors.Is(err, dataservice.ErrAssetNotProcessing) {
		log.WithField("asset", assetID).Error("Marking asset failed: ", err)
	}
}

// runHeartbeat refreshes updated_at until the job finishes, so the
// stale sweep only catches jobs with no live worker attached.
func (o *Orchestrator) runHeartbeat(ctx context.Context, assetID string) {
	ticker := time.NewTicker(o.opts.Heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := o.assets.TouchAsset(assetID); err != nil {
				log.WithField("asset", assetID).Warn("Heartbeat: ", err)
			}
		}
	}
}

// Progress returns the per-quality percent complete for an in-flight
// asset. Empty once processing finishes.
func (o *Orchestrator) Progress(assetID string) map[string]float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]float64, len(o.progress[assetID]))
	for q, pct := range o.progress[assetID] {
		out[q] = pct
	}
	return out
}

func (o *Orchestrator) setProgress(assetID, quality string, pct float64) {
	if pct > 100 {
		pct = 100
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	m, ok := o.progress[assetID]
	if !ok {
		m = make(map[string]float64)
		o.progress[assetID] = m
	}
	m[quality] = pct
}

func (o *Orchestrator) clearProgress(assetID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.progress, assetID)
}

// selectProfiles resolves quality names and drops profiles taller than
// the source (no upscaling). When the source is smaller than everything
// configured, the lowest profile is kept so at least one rendition is
// attempted.
func selectProfiles(qualities []string, sourceHeight int) []media.Profile {
	var resolved []media.Profile
	for _, q := range qualities {
		p, err := media.ProfileFor(q)
		if err != nil {
			log.Warnf("Skipping quality %q: %v", q, err)
			continue
		}
		resolved = append(resolved, p)
	}

	var selected []media.Profile
	var lowest *media.Profile
	for i, p := range resolved {
		if lowest == nil || p.Height < lowest.Height {
			lowest = &resolved[i]
		}
		if sourceHeight <= 0 || p.Height <= sourceHeight {
			selected = append(selected, p)
		}
	}
	if len(selected) == 0 && lowest != nil {
		selected = append(selected, *lowest)
	}
	return selected
}
