package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"portal/config"
	logg "portal/internal/logger"

	"github.com/valkey-io/valkey-go"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type CacheClient valkey.Client

// Cache keeps each record family in its own logical database so one can be flushed alone.
type Cache struct {
	Employer    CacheClient
	Sponsorship CacheClient
}

const (
	cfgDriverSQLite   = config.DriverSQLite
	cfgDriverPostgres = config.DriverPostgres
)

// Logical database 0 is left to other tenants of a shared instance.
const (
	cacheDBEmployer = iota + 1
	cacheDBSponsorship
)

type DB struct {
	SQL   *gorm.DB
	Cache Cache
	log   logg.Logger
}

func New(config config.Config) (DB, error) {
	log := logg.New("database").Function("New")

	log.Info("Initializing database", "driver", config.DatabaseDriver)
	db := &DB{log: log}

	err := db.initializeDB(config)
	if err != nil {
		return DB{}, log.Err("failed to initialize database", err)
	}

	err = db.initializeCacheDB(config)
	if err != nil {
		_ = db.Close()
		return DB{}, log.Err("failed to initialize cache database", err)
	}

	return *db, nil
}

// NewWithConnections wraps already opened connections, used by tests and tools.
func NewWithConnections(sql *gorm.DB, cache Cache) DB {
	return DB{SQL: sql, Cache: cache, log: logg.New("database")}
}

func TXDefer(tx *gorm.DB, log logg.Logger) {
	if tx.Error != nil {
		log.Er("failed to commit transaction", tx.Error)
		tx.Rollback()
	} else {
		err := tx.Commit().Error
		if err != nil {
			log.Er("failed to commit transaction", err)
		} else {
			log.Debug("committed transaction")
		}
	}
}

func gormConfig(config config.Config) *gorm.Config {
	level := logger.Warn
	if config.LogLevel == "debug" {
		level = logger.Info
	}

	gormLogger := logger.New(
		logg.Std(),
		logger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      config.IsProduction(),
			Colorful:                  false,
		},
	)

	return &gorm.Config{
		Logger:                                   gormLogger,
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		CreateBatchSize:                          100,
	}
}

func (s *DB) initializeDB(config config.Config) error {
	switch config.DatabaseDriver {
	case "", cfgDriverSQLite:
		return s.initializeSQLiteDB(gormConfig(config), config)
	case cfgDriverPostgres:
		return s.initializePostgresDB(gormConfig(config), config)
	}
	return s.log.Function("initializeDB").
		Error("unsupported database driver", "driver", config.DatabaseDriver)
}

func (s *DB) initializeSQLiteDB(gormConfig *gorm.Config, config config.Config) error {
	log := s.log.Function("initializeSQLiteDB")

	dbPath := config.DatabaseDbPath
	if dbPath == "" {
		return log.Error("database path is empty", "dbPath", dbPath)
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		log.Info("Creating database directory", "dir", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return log.Err("failed to create database directory", err, "dir", dir)
		}
	}

	log.Info("Connecting with GORM", "dbPath", dbPath)
	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), gormConfig)
	if err != nil {
		return log.Err("failed to open database with GORM", err)
	}

	return s.configurePool(db, 1)
}

func (s *DB) initializePostgresDB(gormConfig *gorm.Config, config config.Config) error {
	log := s.log.Function("initializePostgresDB")

	if config.DatabaseHost == "" || config.DatabaseName == "" {
		return log.Error("database host or name is empty", "host", config.DatabaseHost, "name", config.DatabaseName)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseName,
	)

	log.Info("Connecting with GORM", "host", config.DatabaseHost, "database", config.DatabaseName)
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return log.Err("failed to open database with GORM", err)
	}

	return s.configurePool(db, 100)
}

// configurePool caps sqlite at one writer connection; sqlite serialises writes anyway.
func (s *DB) configurePool(db *gorm.DB, maxOpen int) error {
	log := s.log.Function("configurePool")

	sqlDB, err := db.DB()
	if err != nil {
		return log.Err("failed to get database from GORM", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return log.Err("failed to ping database through GORM", err)
	}

	log.Info("Successfully connected with GORM")
	sqlDB.SetMaxIdleConns(min(10, maxOpen))
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s.SQL = db

	return nil
}

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")

	if config.DatabaseCacheAddress == "" || config.DatabaseCachePort == 0 {
		return log.Error("cache address or port is empty",
			"address", config.DatabaseCacheAddress,
			"port", config.DatabaseCachePort)
	}

	address := fmt.Sprintf("%s:%d", config.DatabaseCacheAddress, config.DatabaseCachePort)
	clients := []struct {
		target *CacheClient
		db     int
		name   string
	}{
		{&s.Cache.Employer, cacheDBEmployer, "Employer"},
		{&s.Cache.Sponsorship, cacheDBSponsorship, "Sponsorship"},
	}

	for _, c := range clients {
		client, err := NewCacheClient(address, c.db)
		if err != nil {
			return log.Err("failed to connect to cache", err, "cache", c.name, "address", address)
		}
		*c.target = client
	}

	log.Info("Connected to cache", "address", address)
	return nil
}

// NewCacheClient opens a single-node client on logical database db. Entries carry explicit TTLs
// and are invalidated on write, so client-side tracking stays off.
func NewCacheClient(address string, db int) (CacheClient, error) {
	return valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{address},
		SelectDB:          db,
		DisableCache:      true,
		ForceSingleClient: true,
		ConnWriteTimeout:  5 * time.Second,
	})
}

type namedCache struct {
	client CacheClient
	name   string
}

func (s *DB) cacheClients() []namedCache {
	return []namedCache{
		{s.Cache.Employer, "Employer"},
		{s.Cache.Sponsorship, "Sponsorship"},
	}
}

func (s *DB) Close() (err error) {
	if s.SQL != nil {
		sqlDB, dbErr := s.SQL.DB()
		if dbErr == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				err = s.log.Err("failed to close database", closeErr)
			}
		}
	}

	for _, cache := range s.cacheClients() {
		if cache.client != nil {
			cache.client.Close()
		}
	}

	return err
}

func (s *DB) SQLWithContext(ctx context.Context) *gorm.DB {
	return s.SQL.WithContext(ctx)
}

func (s *DB) FlushAllCaches() error {
	log := s.log.Function("FlushAllCaches")
	log.Info("Flushing all cache databases")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, cache := range s.cacheClients() {
		if cache.client != nil {
			if err := cache.client.Do(ctx, cache.client.B().Flushdb().Build()).Error(); err != nil {
				return log.Err("failed to flush cache database", err, "cache", cache.name)
			}
			log.Info("Successfully flushed cache database", "cache", cache.name)
		}
	}

	log.Info("All cache databases flushed successfully")
	return nil
}
