package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// JWT
	JWTSecret    string
	JWTExpiresIn time.Duration

	// AWS S3
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3BucketName       string

	// Server
	Port   string
	AppEnv string

	// Logging
	LogLevel string
	LogFile  string

	// Activity log maintenance
	LogArchiveDays int

	// Feature toggles
	SkipMigrate bool
}

func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local"
}

var AppConfig *Config

// source resolves configuration keys against SSM parameters first (when
// enabled), then the process environment, then the given default.
type source struct {
	params map[string]string
}

func (s *source) get(key, def string) string {
	key = strings.ToUpper(key)
	if v, ok := s.params[key]; ok && v != "" {
		return v
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func LoadConfig() {
	src := &source{}

	if strings.EqualFold(os.Getenv("USE_SSM"), "true") {
		src.params = loadSSMParameters()
	} else if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	AppConfig = &Config{
		DBHost:     src.get("DB_HOST", "localhost"),
		DBPort:     src.get("DB_PORT", "3306"),
		DBUser:     src.get("DB_USER", "root"),
		DBPassword: src.get("DB_PASSWORD", ""),
		DBName:     src.get("DB_NAME", "schoolrecords_go"),

		RedisHost:     src.get("REDIS_HOST", "localhost"),
		RedisPort:     src.get("REDIS_PORT", "6379"),
		RedisPassword: src.get("REDIS_PASSWORD", ""),

		JWTSecret:    src.get("JWT_SECRET", "your_super_secret_jwt_key"),
		JWTExpiresIn: parseExpiry(src.get("JWT_EXPIRES_IN", "24h")),

		AWSRegion:          src.get("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     src.get("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: src.get("AWS_SECRET_ACCESS_KEY", ""),
		S3BucketName:       src.get("S3_BUCKET_NAME", "schoolrecords-storage"),

		Port:   src.get("PORT", "3000"),
		AppEnv: src.get("APP_ENV", "development"),

		LogLevel: src.get("LOG_LEVEL", "info"),
		LogFile:  src.get("LOG_FILE", "logs/app.log"),

		LogArchiveDays: parseIntSetting("LOG_ARCHIVE_DAYS", src.get("LOG_ARCHIVE_DAYS", "30")),

		SkipMigrate: strings.EqualFold(src.get("SKIP_MIGRATE", "false"), "true"),
	}

	validateConfig(AppConfig)
}

// parseExpiry accepts time.ParseDuration syntax plus "7d" / "2w" shorthand.
func parseExpiry(value string) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	s := strings.TrimSpace(strings.ToLower(value))
	if len(s) > 1 {
		if n, err := strconv.Atoi(s[:len(s)-1]); err == nil {
			switch s[len(s)-1] {
			case 'd':
				return time.Duration(n) * 24 * time.Hour
			case 'w':
				return time.Duration(n) * 7 * 24 * time.Hour
			}
		}
	}
	log.Fatalf("Invalid JWT_EXPIRES_IN value %q", value)
	return 0
}

func parseIntSetting(key, value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Invalid %s value %q", key, value)
	}
	return n
}

// loadSSMParameters reads every parameter under the configured base path and
// stage, keyed by the UPPERCASE last path segment.
func loadSSMParameters() map[string]string {
	basePath := strings.TrimRight(envOr("SSM_BASE_PATH", "/schoolrecords"), "/")
	stage := envOr("STAGE", envOr("APP_ENV", "production"))
	prefix := basePath + "/" + stage

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(envOr("AWS_REGION", "us-east-1")),
	})
	if err != nil {
		log.Fatal("Failed to create AWS session:", err)
	}
	client := ssm.New(sess)
	log.Printf("Using AWS SSM Parameter Store (prefix=%s)", prefix)

	out := make(map[string]string)
	var next *string
	for {
		resp, err := client.GetParametersByPath(&ssm.GetParametersByPathInput{
			Path:           aws.String(prefix),
			WithDecryption: aws.Bool(true),
			Recursive:      aws.Bool(true),
			NextToken:      next,
		})
		if err != nil {
			log.Printf("Warning: unable to fetch SSM parameters for prefix %s: %v", prefix, err)
			break
		}
		for _, p := range resp.Parameters {
			if p.Name == nil || p.Value == nil {
				continue
			}
			key := (*p.Name)[strings.LastIndex(*p.Name, "/")+1:]
			if key != "" {
				out[strings.ToUpper(key)] = *p.Value
			}
		}
		if resp.NextToken == nil || *resp.NextToken == "" {
			break
		}
		next = resp.NextToken
	}
	return out
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func validateConfig(c *Config) {
	// Stricter rules apply in production only
	if !strings.EqualFold(c.AppEnv, "production") {
		return
	}
	if strings.TrimSpace(c.DBPassword) == "" {
		log.Fatal("Missing required secret DB_PASSWORD in production")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		log.Fatal("Missing required secret JWT_SECRET in production")
	}
	if len(c.JWTSecret) < 16 {
		log.Fatal("JWT_SECRET too short (min 16 chars)")
	}
}
