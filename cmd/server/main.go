// @title           NodosIoT Server API
// @version         1.0
// @description     Environmental monitoring backend: node and sensor management, reading ingestion with threshold alerting, analytics and exports

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer: ` prefix
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/osmelmr/nodosiot-server/internal/app/routes"
	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/database"
	Logger "github.com/osmelmr/nodosiot-server/pkg/logger"

	"gorm.io/gorm"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("setting up logger: %v\n", err)
		os.Exit(1)
	}

	// Environment variables may also arrive from the deployment, so a
	// missing .env file is not fatal.
	if err := godotenv.Load(); err != nil {
		Logger.Warning("no .env file loaded: %v", err)
	} else {
		Logger.Info(".env file loaded")
	}

	cfg := config.GetConfig()

	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		log.Fatalf("creating database connection pool: %v", err)
	}
	db := pool.GetDB()

	if cfg.DBMigrationMode == "drop" {
		log.Println("warning: running in drop mode, all tables will be dropped and recreated")
		if err := dropAndRecreateTables(db); err != nil {
			log.Fatalf("dropping and recreating tables: %v", err)
		}
	} else {
		// AutoMigrate only adds new columns and tables.
		if err := autoMigrate(db); err != nil {
			log.Fatalf("migrating database: %v", err)
		}
	}

	ensureAdminExists(db, cfg)

	r := routes.SetupRouter(db, cfg)

	port := cfg.ServerPort

	printSystemInfo(pool)

	Logger.Info("server listening on http://0.0.0.0:%s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		Logger.Error("starting server: %v", err)
		os.Exit(1)
	}
}

// autoMigrate migrates every model (additive only)
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Node{},
		&models.Sensor{},
		&models.Reading{},
		&models.Alert{},
	)

	if err != nil {
		return err
	}

	fmt.Println("Database migration completed")
	return nil
}

// dropAndRecreateTables drops every table and migrates from scratch
func dropAndRecreateTables(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB connection: %w", err)
	}

	if _, err = sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		log.Printf("disabling foreign key checks: %v", err)
	}
	defer sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1")

	tables := []string{"alerts", "readings", "sensors", "nodes", "users"}

	for _, table := range tables {
		log.Printf("dropping table: %s", table)
		if _, err := sqlDB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			log.Printf("dropping table %s: %v", table, err)
		}
	}

	return autoMigrate(db)
}

// ensureAdminExists seeds the default admin account on an empty user table
func ensureAdminExists(db *gorm.DB, cfg *config.Config) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)

	if count == 0 {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hashing default admin password: %v", err)
		}

		admin := models.User{
			Email:       cfg.DefaultAdminEmail,
			Password:    string(hashedPassword),
			Role:        models.RoleAdmin,
			IsSuperuser: true,
		}

		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("creating default admin: %v", err)
		}

		Logger.Info("default admin account created: %s", cfg.DefaultAdminEmail)
	}
}

// printSystemInfo logs runtime and pool details at startup
func printSystemInfo(pool *database.ConnectionPool) {
	Logger.Info("go version: %s, cpus: %d", runtime.Version(), runtime.NumCPU())
	if stats, err := pool.Stats(); err == nil {
		Logger.Info("db pool: open=%v idle=%v in_use=%v", stats["open_connections"], stats["idle"], stats["in_use"])
	}
}
