package dataservice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skillstream/mediacore/dataservice"
	"github.com/skillstream/mediacore/dataservice/mocks"
	"github.com/skillstream/mediacore/model"
)

func TestNewAssetDatabase(t *testing.T) {
	dbClient, err := dataservice.NewClient(uri)
	assert.NoError(t, err)

	db := dataservice.NewDatabase(dbName, dbClient)

	assetDB := dataservice.NewAssetDatabase(db)

	assert.NotEmpty(t, assetDB)
}

func TestGetAsset(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	sr := &mocks.SingleResultHelper{}

	sr.On("Decode", mock.AnythingOfType("*model.MediaAsset")).Return(nil).Run(func(args mock.Arguments) {
		out := args.Get(0).(*model.MediaAsset)
		*out = model.MediaAsset{
			AssetID:  "1b2e976a-983d-4845-967a-f60b33c82869",
			Filename: "lecture.mp4",
			Status:   model.StatusCompleted,
			Duration: 60,
		}
	})
	coll.On("FindOne", mock.Anything, mock.Anything).Return(sr)
	db.On("Collection", "asset").Return(coll)

	assetDB := dataservice.NewAssetDatabase(db)

	asset, err := assetDB.GetAsset("1b2e976a-983d-4845-967a-f60b33c82869")
	assert.NoError(t, err)
	assert.Equal(t, "lecture.mp4", asset.Filename)
	assert.Equal(t, model.StatusCompleted, asset.Status)
}

func TestGetAssetNotFound(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	sr := &mocks.SingleResultHelper{}

	sr.On("Decode", mock.Anything).Return(errors.New("couldn't find asset"))
	coll.On("FindOne", mock.Anything, mock.Anything).Return(sr)
	db.On("Collection", "asset").Return(coll)

	assetDB := dataservice.NewAssetDatabase(db)

	asset, err := assetDB.GetAsset("some-wrong-asset-id")
	assert.EqualError(t, err, "couldn't find asset")
	assert.Equal(t, model.MediaAsset{}, asset)
	assert.False(t, assetDB.IfAssetExists("some-wrong-asset-id"))
}

func TestInsertAsset(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}

	coll.On("InsertOne", mock.Anything, mock.AnythingOfType("model.MediaAsset")).Return("inserted-id", nil)
	db.On("Collection", "asset").Return(coll)

	assetDB := dataservice.NewAssetDatabase(db)

	err := assetDB.InsertAsset(model.MediaAsset{
		AssetID:  "1b2e976a-983d-4845-967a-f60b33c82869",
		Filename: "lecture.mp4",
		Status:   model.StatusUploading,
	})
	assert.NoError(t, err)
}

func TestUpdateAssetStatus(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}

	coll.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	db.On("Collection", "asset").Return(coll)

	assetDB := dataservice.NewAssetDatabase(db)

	assert.NoError(t, assetDB.UpdateAssetStatus("asset1", model.StatusProcessing))
	assert.NoError(t, assetDB.SetAssetFailed("asset1", "processing timed out"))
	assert.NoError(t, assetDB.SetAssetCompleted("asset1", []string{"360p", "720p"}))
	assert.NoError(t, assetDB.UpdateAssetDuration("asset1", 60))
	assert.NoError(t, assetDB.UpdateThumbnail("asset1", "asset1/thumbnails/thumb_1.jpg"))
	assert.NoError(t, assetDB.TouchAsset("asset1"))
}

// The terminal updates filter on the processing state; matching nothing
// means the asset already reached a terminal state elsewhere.
func TestTerminalUpdatesRequireProcessing(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}

	coll.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	db.On("Collection", "asset").Return(coll)

	assetDB := dataservice.NewAssetDatabase(db)

	err := assetDB.SetAssetCompleted("asset1", []string{"360p"})
	assert.ErrorIs(t, err, dataservice.ErrAssetNotProcessing)

	err = assetDB.SetAssetFailed("asset1", "processing timed out")
	assert.ErrorIs(t, err, dataservice.ErrAssetNotProcessing)

	// Touch is a no-op on non-processing assets, not an error.
	assert.NoError(t, assetDB.TouchAsset("asset1"))
}

func TestListStaleProcessing(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	cur := &mocks.CursorHelper{}

	cur.On("All", mock.Anything, mock.AnythingOfType("*[]model.MediaAsset")).Return(nil).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]model.MediaAsset)
		*out = []model.MediaAsset{{AssetID: "stuck", Status: model.StatusProcessing, UpdatedAt: 100}}
	})
	coll.On("Find", mock.Anything, mock.Anything).Return(cur, nil)
	db.On("Collection", "asset").Return(coll)

	assetDB := dataservice.NewAssetDatabase(db)

	stale, err := assetDB.ListStaleProcessing(200)
	assert.NoError(t, err)
	assert.Len(t, stale, 1)
	assert.Equal(t, "stuck", stale[0].AssetID)
}
