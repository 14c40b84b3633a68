package testinfra

import (
	"context"
	"log"
	"os"
	"strings"

	"orghub/persistence"

	"github.com/google/uuid"
)

type TestDatabase struct {
	TestDatabaseName string
	DS               *persistence.DataSourceManager

	dropOnStop bool
}

// StartTestDatabase starts an isolated database for a test. By default it is an in-memory sqlite database;
// a mysql database is created instead when TEST_MYSQL_SERVICE is set, e.g. TEST_MYSQL_SERVICE=root:root@(127.0.0.1:3306)
func StartTestDatabase(baseName string) *TestDatabase {
	databaseName := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	mysqlSvc := os.Getenv("TEST_MYSQL_SERVICE")
	var dbConfig *persistence.DatabaseConfig
	if mysqlSvc != "" {
		dbConfig = &persistence.DatabaseConfig{
			DriverType: "mysql", DriverArgs: mysqlSvc + "/" + databaseName + "?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s",
		}
		// create database (no conflict)
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	} else {
		dbConfig = &persistence.DatabaseConfig{
			DriverType: "sqlite", DriverArgs: "file:" + databaseName + "?mode=memory&cache=shared",
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		defer ds.Stop()
		log.Fatalf("database conneciton failed %v\n", err)
	}

	return &TestDatabase{TestDatabaseName: databaseName, DS: ds, dropOnStop: mysqlSvc != ""}
}

func StopTestDatabase(testDatabase *TestDatabase) {
	if testDatabase == nil || testDatabase.DS == nil {
		return
	}
	if testDatabase.dropOnStop && testDatabase.DS.GormDB(context.TODO()) != nil {
		if err := testDatabase.DS.GormDB(context.TODO()).Exec("DROP DATABASE " + testDatabase.TestDatabaseName).Error; err != nil {
			log.Println("failed to drop test database: " + testDatabase.TestDatabaseName)
		} else {
			log.Println("test database " + testDatabase.TestDatabaseName + " dropped")
		}
	}
	// in-memory sqlite databases vanish with their last connection
	testDatabase.DS.Stop()
}
