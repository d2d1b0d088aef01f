package pipeline

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/skillstream/mediacore/dataservice"
)

// SweepStale fails assets stuck in the processing state for longer than
// maxAge. A process restart mid-job leaves the record in processing with
// no worker attached; the sweep turns those into an honest failure the
// client can see.
func SweepStale(assets dataservice.AssetDatabase, maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge).Unix()
	stale, err := assets.ListStaleProcessing(cutoff)
	if err != nil {
		log.Error("Listing stale processing assets: ", err)
		return
	}
	for _, asset := range stale {
		log.Warnf("Failing stale asset %s (last update %d)", asset.AssetID, asset.UpdatedAt)
		if err := assets.SetAssetFailed(asset.AssetID, "processing timed out"); err != nil {
			// The asset may have reached a terminal state between the
			// listing and the update; that is not a sweep failure.
			if errors.Is(err, dataservice.ErrAssetNotProcessing) {
				continue
			}
			log.Error("Failing stale asset: ", err)
		}
	}
}

// RunSweeper runs SweepStale on an interval until the context is
// cancelled.
func RunSweeper(ctx context.Context, assets dataservice.AssetDatabase, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down stale-job sweeper")
			return
		case <-ticker.C:
			SweepStale(assets, maxAge)
		}
	}
}
