package database

import (
	"context"
	"fmt"
	"log"
	"schoolrecords_go/config"
	"schoolrecords_go/models"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB
var RedisClient *redis.Client

// Connect initializes the database and Redis connections
func Connect() {
	connectDatabase()
	connectRedis()
}

const connectAttempts = 8

// connectDatabase opens the MySQL connection with retries and configures the
// pool. MySQL being unreachable at startup is fatal.
func connectDatabase() {
	dsn := config.AppConfig.GetDSN()

	gormLogger := logger.Default.LogMode(logger.Silent)
	if config.AppConfig.AppEnv == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	var err error
	for attempt := 1; ; attempt++ {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			log.Fatal("Failed to connect to database after retries:", err)
		}
		log.Printf("Database connect attempt %d failed: %v", attempt, err)
		time.Sleep(time.Duration(attempt*attempt) * 300 * time.Millisecond)
	}

	log.Println("Database connected successfully")

	// Configure connection pool
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to get database instance:", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(55 * time.Minute)

	if !config.AppConfig.SkipMigrate {
		AutoMigrate()
	}
}

// AutoMigrate performs automatic database migration. The composite unique
// indexes declared on the models (program/session, enrollment/date, ...) are
// created here; the attendance lazy-create relies on them.
func AutoMigrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Zone{},
		&models.Program{},
		&models.Session{},
		&models.Schedule{},
		&models.CanceledDate{},
		&models.School{},
		&models.Student{},
		&models.Enrollment{},
		&models.Partner{},
		&models.Attendance{},
		&models.ActivityLog{},
		&models.LogArchive{},
	)

	if err != nil {
		log.Fatal("Auto migration failed:", err)
	}

	log.Println("Database migration completed successfully")
}

// connectRedis opens the Redis connection. Redis is optional: without it the
// token blacklist is skipped and activity logs are written straight to MySQL.
func connectRedis() {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.AppConfig.RedisHost, config.AppConfig.RedisPort),
		Password: config.AppConfig.RedisPassword,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis connection failed: %v", err)
		log.Println("Continuing without Redis - logs will be saved directly to database")
		return
	}

	RedisClient = client
	log.Println("Redis connected successfully")
}

// GetRedisClient returns the Redis client, nil when Redis is unavailable.
func GetRedisClient() *redis.Client {
	return RedisClient
}

// Close closes the database connection
func Close() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Println("Error getting database instance:", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Println("Error closing database connection:", err)
	}
}
