package main

import (
	"orghub/account"
	"orghub/activity"
	"orghub/client/es"
	"orghub/common"
	"orghub/config"
	"orghub/indices"
	"orghub/infra/tracing"
	"orghub/persistence"
	"orghub/servehttp"
	"orghub/session"
	"orghub/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config failed: %v", err)
	}
	common.SetServiceName(cfg.ServiceName)
	common.ConfigureLogger(cfg.LogLevel, gin.Mode() == gin.ReleaseMode)
	logrus.Info("service start")

	if cfg.Tracing.Enabled {
		closer, err := tracing.InitGlobalTracer(cfg.ServiceName)
		if err != nil {
			logrus.Fatalf("init tracer failed: %v", err)
		}
		defer closer.Close()
	}

	dbConfig := &persistence.DatabaseConfig{DriverType: cfg.Database.Driver, DriverArgs: cfg.Database.DSN}
	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database: %v", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed: %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	if err := servehttp.Migrate(ds); err != nil {
		logrus.Fatalf("database migration failed: %v", err)
	}
	if err := account.DefaultSecurityConfiguration(cfg.Admin.Email, cfg.Admin.InitialPassword); err != nil {
		logrus.Fatalf("security configuration failed: %v", err)
	}

	session.ActiveTokenIssuer = session.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer)

	switch cfg.Storage.Driver {
	case "local":
		storage.ActiveStore = &storage.LocalStore{Root: cfg.Storage.LocalRoot}
	case "oss":
		bucket, err := storage.BuildBucket(cfg.Storage.OSS.Endpoint, cfg.Storage.OSS.AccessKey,
			cfg.Storage.OSS.SecretKey, cfg.Storage.OSS.Bucket)
		if err != nil {
			logrus.Fatalf("oss bucket init failed: %v", err)
		}
		storage.ActiveStore = &storage.OSSStore{Bucket: bucket}
	}

	if cfg.Elasticsearch.URL != "" {
		client, err := es.CreateClient(cfg.Elasticsearch.URL)
		if err != nil {
			logrus.Fatalf("elasticsearch client init failed: %v", err)
		}
		es.ActiveESClient = client
		activity.Handlers = append(activity.Handlers, indices.IndexContentActivityHandle)
	} else {
		logrus.Info("elasticsearch url is empty, search is disabled")
	}

	servehttp.StartHTTPServer(cfg.HTTPAddr, servehttp.NewEngine(cfg.ServiceName))
}
