package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/skillstream/mediacore/artifact"
	"github.com/skillstream/mediacore/config"
	"github.com/skillstream/mediacore/dataservice"
	"github.com/skillstream/mediacore/media"
	"github.com/skillstream/mediacore/pipeline"
	"github.com/skillstream/mediacore/server"
	"github.com/skillstream/mediacore/server/routes"
)

func main() {
	cfg := config.Load()

	client, err := dataservice.NewClient(cfg.MongoURI)
	if err != nil {
		log.Fatalln("Error in creating mongo client", err)
	}
	if err := client.Connect(); err != nil {
		log.Fatalln("Error in connecting to mongo", err)
	}
	db := dataservice.NewDatabase(cfg.DBName, client)
	assetDB := dataservice.NewAssetDatabase(db)
	renditionDB := dataservice.NewRenditionDatabase(db)

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalln("Error in initializing artifact store", err)
	}

	tools := &media.Toolset{FFmpeg: cfg.FFmpegPath, FFprobe: cfg.FFprobePath}
	if err := tools.Check(); err != nil {
		// Surfaced at startup so a missing encoder is an operational
		// alarm rather than a string of failed uploads.
		log.Error("Encoder tools unavailable: ", err)
	}

	runner := media.NewCommandRunner()
	orch := pipeline.New(
		assetDB,
		renditionDB,
		store,
		media.NewProber(tools, runner),
		media.NewTranscoder(tools, runner),
		media.NewThumbnailGenerator(tools, runner),
		pipeline.Options{
			MaxTranscodes: cfg.MaxTranscodes,
			JobTimeout:    cfg.JobTimeout,
			Thumbnails: media.ThumbnailOptions{
				Count:   cfg.ThumbnailCount,
				Width:   cfg.ThumbnailWidth,
				Format:  cfg.ThumbnailFormat,
				Quality: cfg.ThumbnailQuality,
			},
		},
	)

	go pipeline.RunSweeper(context.Background(), assetDB, 5*time.Minute, cfg.StaleJobAfter)

	h := &routes.Handler{
		Assets:     assetDB,
		Renditions: renditionDB,
		Store:      store,
		Orch:       orch,
		Tools:      tools,
		Cfg:        cfg,
	}
	server.StartServer(":"+cfg.Port, h)
}

func newStore(cfg config.Config) (artifact.Store, error) {
	if cfg.StorageBackend == "minio" {
		return artifact.NewMinioStore(artifact.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Secure:    cfg.MinioSecure,
		})
	}
	return artifact.NewDiskStore(cfg.StorageDir, "/files")
}
