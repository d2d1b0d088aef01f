package pipeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skillstream/mediacore/model"
	"github.com/skillstream/mediacore/pipeline"
)

func TestSweepStale(t *testing.T) {
	assets := newFakeAssetDB()
	old := time.Now().Add(-time.Hour).Unix()

	assert.NoError(t, assets.InsertAsset(model.MediaAsset{
		AssetID: "stuck", Status: model.StatusProcessing, UpdatedAt: old,
	}))
	assert.NoError(t, assets.InsertAsset(model.MediaAsset{
		AssetID: "fresh", Status: model.StatusProcessing, UpdatedAt: time.Now().Unix(),
	}))
	assert.NoError(t, assets.InsertAsset(model.MediaAsset{
		AssetID: "done", Status: model.StatusCompleted, UpdatedAt: old,
	}))

	pipeline.SweepStale(assets, 30*time.Minute)

	stuck, _ := assets.GetAsset("stuck")
	assert.Equal(t, model.StatusFailed, stuck.Status)
	assert.Equal(t, "processing timed out", stuck.ProcessingError)

	fresh, _ := assets.GetAsset("fresh")
	assert.Equal(t, model.StatusProcessing, fresh.Status)

	done, _ := assets.GetAsset("done")
	assert.Equal(t, model.StatusCompleted, done.Status)
}
