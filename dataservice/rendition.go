package dataservice

import (
	"context"
	"fmt"

	"github.com/skillstream/mediacore/model"

	log "github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"
)

// RenditionDatabase provides the rendition db operations.
type RenditionDatabase interface {
	InsertRendition(model.Rendition) error
	GetRendition(string, string) (model.Rendition, error)
	IfRenditionExists(string, string) bool
	ListRenditions(string) ([]model.Rendition, error)
	DeleteRenditions(string) (int64, error)
}

type renditionDatabase struct {
	db DatabaseHelper
}

// NewRenditionDatabase returns an instance of RenditionDatabase.
func NewRenditionDatabase(db DatabaseHelper) RenditionDatabase {
	return &renditionDatabase{
		db: db,
	}
}

// InsertRendition inserts a rendition record. There is at most one
// rendition per (asset, quality) pair.
func (r *renditionDatabase) InsertRendition(rendition model.Rendition) error {
	if r.IfRenditionExists(rendition.AssetID, rendition.Quality) {
		return fmt.Errorf("rendition %s/%s already exists", rendition.AssetID, rendition.Quality)
	}
	insertResult, err := r.db.Collection("rendition").InsertOne(context.Background(), rendition)
	if err != nil {
		log.Error("Inserting a rendition: ", err)
		return err
	}
	log.Info("Inserted a rendition: ", insertResult)
	return nil
}

func (r *renditionDatabase) GetRendition(assetID string, quality string) (model.Rendition, error) {
	result := model.Rendition{}
	filter := bson.M{"asset_id": assetID, "quality": quality}
	err := r.db.Collection("rendition").FindOne(context.Background(), filter).Decode(&result)
	if err != nil {
		return result, err
	}
	return result, nil
}

func (r *renditionDatabase) IfRenditionExists(assetID string, quality string) bool {
	result := model.Rendition{}
	filter := bson.M{"asset_id": assetID, "quality": quality}
	err := r.db.Collection("rendition").FindOne(context.Background(), filter).Decode(&result)
	if err != nil {
		return false
	}
	return true
}

func (r *renditionDatabase) ListRenditions(assetID string) ([]model.Rendition, error) {
	filter := bson.M{"asset_id": assetID}
	cur, err := r.db.Collection("rendition").Find(context.Background(), filter)
	if err != nil {
		log.Error("Listing renditions: ", err)
		return nil, err
	}
	var results []model.Rendition
	if err := cur.All(context.Background(), &results); err != nil {
		log.Error("Decoding renditions: ", err)
		return nil, err
	}
	return results, nil
}

func (r *renditionDatabase) DeleteRenditions(assetID string) (int64, error) {
	filter := bson.M{"asset_id": assetID}
	count, err := r.db.Collection("rendition").DeleteMany(context.Background(), filter)
	if err != nil {
		log.Error("Deleting renditions: ", err)
		return 0, err
	}
	log.Info("Deleted renditions for asset ", assetID, ": ", count)
	return count, nil
}
