package dataservice

import (
	"context"
	"errors"
	"time"

	"github.com/skillstream/mediacore/model"

	log "github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrAssetNotProcessing is returned by the conditional terminal updates
// when the asset is no longer in the processing state. Terminal states
// are only ever entered from processing, so a worker whose job was
// failed elsewhere (e.g. by the stale sweep) cannot overwrite the
// outcome.
var ErrAssetNotProcessing = errors.New("asset is not in processing state")

// AssetDatabase provides the media asset db operations.
type AssetDatabase interface {
	InsertAsset(model.MediaAsset) error
	GetAsset(string) (model.MediaAsset, error)
	IfAssetExists(string) bool
	UpdateAssetStatus(string, model.AssetStatus) error
	SetAssetFailed(string, string) error
	SetAssetCompleted(string, []string) error
	UpdateAssetDuration(string, float64) error
	UpdateThumbnail(string, string) error
	TouchAsset(string) error
	DeleteAsset(string) error
	ListStaleProcessing(int64) ([]model.MediaAsset, error)
}

type assetDatabase struct {
	db DatabaseHelper
}

// NewAssetDatabase returns an instance of AssetDatabase.
func NewAssetDatabase(db DatabaseHelper) AssetDatabase {
	return &assetDatabase{
		db: db,
	}
}

func (a *assetDatabase) InsertAsset(asset model.MediaAsset) error {
	insertResult, err := a.db.Collection("asset").InsertOne(context.Background(), asset)
	if err != nil {
		log.Error("Inserting an asset: ", err)
		return err
	}
	log.Info("Inserted an asset: ", insertResult)
	return nil
}

func (a *assetDatabase) GetAsset(assetID string) (model.MediaAsset, error) {
	result := model.MediaAsset{}
	filter := bson.D{primitive.E{Key: "_id", Value: assetID}}
	err := a.db.Collection("asset").FindOne(context.Background(), filter).Decode(&result)
	if err != nil {
		log.Error("Getting asset: ", err)
		return result, err
	}
	return result, nil
}

func (a *assetDatabase) IfAssetExists(assetID string) bool {
	result := model.MediaAsset{}
	filter := bson.D{primitive.E{Key: "_id", Value: assetID}}
	err := a.db.Collection("asset").FindOne(context.Background(), filter).Decode(&result)
	if err != nil {
		return false
	}
	return true
}

func (a *assetDatabase) UpdateAssetStatus(assetID string, status model.AssetStatus) error {
	filter := bson.M{"_id": assetID}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().Unix(),
	}}
	matched, err := a.db.Collection("asset").UpdateOne(context.Background(), filter, update)
	if err != nil {
		log.Error("Updating asset status: ", err)
		return err
	}
	log.Info("Updated asset status, matched: ", matched)
	return nil
}

// SetAssetFailed marks the asset failed with a short, user-safe reason.
// It only applies while the asset is processing.
func (a *assetDatabase) SetAssetFailed(assetID string, reason string) error {
	filter := bson.M{"_id": assetID, "status": model.StatusProcessing}
	update := bson.M{"$set": bson.M{
		"status":           model.StatusFailed,
		"processing_error": reason,
		"updated_at":       time.Now().Unix(),
	}}
	matched, err := a.db.Collection("asset").UpdateOne(context.Background(), filter, update)
	if err != nil {
		log.Error("Marking asset failed: ", err)
		return err
	}
	if matched == 0 {
		return ErrAssetNotProcessing
	}
	log.Info("Marked asset failed: ", assetID)
	return nil
}

// SetAssetCompleted marks the asset completed and records the qualities
// that ended up available. It only applies while the asset is
// processing, so a job failed by the stale sweep stays failed.
func (a *assetDatabase) SetAssetCompleted(assetID string, qualities []string) error {
	filter := bson.M{"_id": assetID, "status": model.StatusProcessing}
	update := bson.M{"$set": bson.M{
		"status":           model.StatusCompleted,
		"processing_error": "",
		"qualities":        qualities,
		"updated_at":       time.Now().Unix(),
	}}
	matched, err := a.db.Collection("asset").UpdateOne(context.Background(), filter, update)
	if err != nil {
		log.Error("Marking asset completed: ", err)
		return err
	}
	if matched == 0 {
		return ErrAssetNotProcessing
	}
	log.Info("Marked asset completed: ", assetID)
	return nil
}

func (a *assetDatabase) UpdateAssetDuration(assetID string, duration float64) error {
	filter := bson.M{"_id": assetID}
	update := bson.M{"$set": bson.M{
		"duration":   duration,
		"updated_at": time.Now().Unix(),
	}}
	_, err := a.db.Collection("asset").UpdateOne(context.Background(), filter, update)
	if err != nil {
		log.Error("Updating asset duration: ", err)
		return err
	}
	return nil
}

func (a *assetDatabase) UpdateThumbnail(assetID string, thumbnail string) error {
	filter := bson.M{"_id": assetID}
	update := bson.M{"$set": bson.M{
		"thumbnail_path": thumbnail,
		"updated_at":     time.Now().Unix(),
	}}
	_, err := a.db.Collection("asset").UpdateOne(context.Background(), filter, update)
	if err != nil {
		log.Error("Updating thumbnail: ", err)
		return err
	}
	return nil
}

// TouchAsset refreshes updated_at for a processing asset. Live workers
// call this periodically so the stale sweep never fails a job that is
// merely slow or queued.
func (a *assetDatabase) TouchAsset(assetID string) error {
	filter := bson.M{"_id": assetID, "status": model.StatusProcessing}
	update := bson.M{"$set": bson.M{
		"updated_at": time.Now().Unix(),
	}}
	_, err := a.db.Collection("asset").UpdateOne(context.Background(), filter, update)
	if err != nil {
		log.Error("Touching asset: ", err)
		return err
	}
	return nil
}

func (a *assetDatabase) DeleteAsset(assetID string) error {
	filter := bson.M{"_id": assetID}
	_, err := a.db.Collection("asset").DeleteOne(context.Background(), filter)
	if err != nil {
		log.Error("Deleting asset: ", err)
		return err
	}
	log.Info("Deleted asset: ", assetID)
	return nil
}

// ListStaleProcessing returns assets stuck in the processing state whose
// last update is older than the given unix timestamp. Used by the
// operational sweep that fails abandoned jobs after a restart.
func (a *assetDatabase) ListStaleProcessing(before int64) ([]model.MediaAsset, error) {
	filter := bson.M{
		"status":     model.StatusProcessing,
		"updated_at": bson.M{"$lt": before},
	}
	cur, err := a.db.Collection("asset").Find(context.Background(), filter)
	if err != nil {
		log.Error("Listing stale assets: ", err)
		return nil, err
	}
	var results []model.MediaAsset
	if err := cur.All(context.Background(), &results); err != nil {
		log.Error("Decoding stale assets: ", err)
		return nil, err
	}
	return results, nil
}
