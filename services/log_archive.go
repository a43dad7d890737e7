package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"schoolrecords_go/config"
	"schoolrecords_go/database"
	"schoolrecords_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	logQueueKey    = "logs:queue"
	flushAfter     = 24 * time.Hour
	archiveBatch   = 1000
	minArchiveDays = 7
)

// LogArchiveService maintains the activity log pipeline: cached entries are
// flushed from Redis into MySQL, and old rows are zipped into S3 archives.
type LogArchiveService struct {
	redisClient *redis.Client
	awsConfig   aws.Config
	scheduler   *cron.Cron
}

// ArchivedLog is the exported representation stored inside archives
type ArchivedLog struct {
	ID         uint           `json:"id"`
	UserID     uint           `json:"user_id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID uint           `json:"resource_id"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at"`
	Username   string         `json:"username,omitempty"`
}

func NewLogArchiveService() *LogArchiveService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(),
		awscfg.WithRegion(config.AppConfig.AWSRegion))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; S3 operations will fail until configured")
	}

	return &LogArchiveService{
		redisClient: database.GetRedisClient(),
		awsConfig:   cfg,
	}
}

// FlushCachedLogsToDatabase persists queue entries older than 24 hours to
// MySQL and drops them from Redis. Entries whose cache key already expired
// are simply dequeued.
func (las *LogArchiveService) FlushCachedLogsToDatabase() error {
	if las.redisClient == nil {
		return fmt.Errorf("redis client not available")
	}

	ctx := context.Background()
	cutoff := time.Now().Add(-flushAfter)

	keys, err := las.redisClient.ZRangeByScore(ctx, logQueueKey, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(cutoff.Unix(), 10),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read log queue: %v", err)
	}
	if len(keys) == 0 {
		return nil
	}

	var flushed, failed int
	for _, key := range keys {
		payload, err := las.redisClient.Get(ctx, key).Result()
		switch {
		case err == redis.Nil:
			// cache entry expired, nothing left to persist
		case err != nil:
			logrus.WithError(err).WithField("key", key).Error("Failed to read cached log")
			failed++
			continue
		default:
			var entry models.ActivityLog
			if err := json.Unmarshal([]byte(payload), &entry); err != nil {
				logrus.WithError(err).WithField("key", key).Error("Failed to decode cached log")
				failed++
				continue
			}
			if err := database.DB.Create(&entry).Error; err != nil {
				logrus.WithError(err).Error("Failed to persist cached log")
				failed++
				continue
			}
			flushed++
		}

		pipe := las.redisClient.Pipeline()
		pipe.Del(ctx, key)
		pipe.ZRem(ctx, logQueueKey, key)
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithError(err).WithField("key", key).Error("Failed to dequeue cached log")
		}
	}

	logrus.Infof("Flushed %d cached logs to database, %d errors", flushed, failed)
	return nil
}

// ArchiveOldLogs zips activity log rows older than daysOld into S3 and
// deletes them from the database, recording a LogArchive row.
func (las *LogArchiveService) ArchiveOldLogs(daysOld int) error {
	if daysOld < minArchiveDays {
		return fmt.Errorf("minimum archive age is %d days", minArchiveDays)
	}
	cutoff := time.Now().AddDate(0, 0, -daysOld)

	entries, err := las.collectLogsBefore(cutoff)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		logrus.Info("No logs to archive")
		return nil
	}
	logrus.Infof("Archiving %d logs older than %s", len(entries), cutoff.Format("2006-01-02"))

	fileName := fmt.Sprintf("activity_logs_%s.zip", cutoff.Format("2006-01-02"))
	archive, err := buildLogArchive(entries, fileName)
	if err != nil {
		return err
	}

	s3Key := fmt.Sprintf("logs/archived/%d/%02d/%s", cutoff.Year(), cutoff.Month(), fileName)
	if err := las.uploadToS3(s3Key, archive); err != nil {
		return fmt.Errorf("failed to upload archive to S3: %v", err)
	}

	result := database.DB.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete archived logs: %v", result.Error)
	}
	logrus.Infof("Archived %s to %s, deleted %d rows", fileName, s3Key, result.RowsAffected)

	meta := models.LogArchive{
		FileName:    fileName,
		S3Key:       s3Key,
		StartDate:   entries[0].CreatedAt,
		EndDate:     cutoff,
		RecordCount: len(entries),
		FileSize:    int64(archive.Len()),
		Status:      "completed",
	}
	if err := database.DB.Create(&meta).Error; err != nil {
		logrus.WithError(err).Error("Failed to save archive metadata")
	}
	return nil
}

// collectLogsBefore pages through activity logs older than cutoff and maps
// them to the archive representation.
func (las *LogArchiveService) collectLogsBefore(cutoff time.Time) ([]ArchivedLog, error) {
	var out []ArchivedLog

	for offset := 0; ; offset += archiveBatch {
		var rows []models.ActivityLog
		err := database.DB.
			Preload("User").
			Where("created_at < ?", cutoff).
			Order("created_at").
			Limit(archiveBatch).
			Offset(offset).
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to fetch logs for archiving: %v", err)
		}
		if len(rows) == 0 {
			return out, nil
		}

		for _, row := range rows {
			entry := ArchivedLog{
				ID:         row.ID,
				UserID:     row.UserID,
				Action:     row.Action,
				Resource:   row.Resource,
				ResourceID: row.ResourceID,
				IPAddress:  row.IPAddress,
				UserAgent:  row.UserAgent,
				CreatedAt:  row.CreatedAt,
				Username:   row.User.Username,
			}
			if len(row.Details) > 0 {
				_ = json.Unmarshal(row.Details, &entry.Details)
			}
			out = append(out, entry)
		}
	}
}

// buildLogArchive packs the entries into a zip holding a JSON dump, a CSV
// rendering and a metadata file.
func buildLogArchive(entries []ArchivedLog, fileName string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	jsonFile, err := zw.Create("activity_logs.json")
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(jsonFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"export_date":  time.Now().UTC(),
		"record_count": len(entries),
		"logs":         entries,
	}); err != nil {
		return nil, err
	}

	metaFile, err := zw.Create("metadata.json")
	if err != nil {
		return nil, err
	}
	if err := json.NewEncoder(metaFile).Encode(map[string]any{
		"file_name":    fileName,
		"created_at":   time.Now().UTC(),
		"record_count": len(entries),
		"first_record": entries[0].CreatedAt,
		"last_record":  entries[len(entries)-1].CreatedAt,
		"description":  "School Records activity log archive",
	}); err != nil {
		return nil, err
	}

	csvFile, err := zw.Create("activity_logs.csv")
	if err != nil {
		return nil, err
	}
	cw := csv.NewWriter(csvFile)
	if err := cw.Write([]string{"ID", "User ID", "Username", "Action", "Resource", "Resource ID", "IP Address", "User Agent", "Created At", "Details"}); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		var details string
		if entry.Details != nil {
			if b, err := json.Marshal(entry.Details); err == nil {
				details = string(b)
			}
		}
		if err := cw.Write([]string{
			strconv.FormatUint(uint64(entry.ID), 10),
			strconv.FormatUint(uint64(entry.UserID), 10),
			entry.Username,
			entry.Action,
			entry.Resource,
			strconv.FormatUint(uint64(entry.ResourceID), 10),
			entry.IPAddress,
			entry.UserAgent,
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			details,
		}); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

func (las *LogArchiveService) uploadToS3(key string, data *bytes.Buffer) error {
	if las.awsConfig.Region == "" {
		return fmt.Errorf("AWS not configured")
	}

	client := s3.NewFromConfig(las.awsConfig)
	_, err := client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(config.AppConfig.S3BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data.Bytes()),
		ContentType: aws.String("application/zip"),
	})
	return err
}

// GetArchivedLogs lists archive metadata, newest first.
func (las *LogArchiveService) GetArchivedLogs() ([]models.LogArchive, error) {
	var archives []models.LogArchive
	if err := database.DB.Order("created_at DESC").Find(&archives).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve archived logs: %v", err)
	}
	return archives, nil
}

// DownloadArchivedLogs streams an archive's zip from S3 along with its file
// name.
func (las *LogArchiveService) DownloadArchivedLogs(archiveID uint) (io.ReadCloser, string, error) {
	var archive models.LogArchive
	if err := database.DB.First(&archive, archiveID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", fmt.Errorf("archive not found")
		}
		return nil, "", fmt.Errorf("failed to retrieve archive: %v", err)
	}

	if las.awsConfig.Region == "" {
		return nil, "", fmt.Errorf("AWS not configured")
	}
	client := s3.NewFromConfig(las.awsConfig)
	result, err := client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(config.AppConfig.S3BucketName),
		Key:    aws.String(archive.S3Key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to download archive from S3: %v", err)
	}
	return result.Body, archive.FileName, nil
}

// StartLogMaintenanceScheduler flushes cached logs hourly and archives old
// logs nightly.
func (las *LogArchiveService) StartLogMaintenanceScheduler() error {
	if las.scheduler != nil {
		return fmt.Errorf("scheduler already running")
	}

	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if err := las.FlushCachedLogsToDatabase(); err != nil {
			logrus.WithError(err).Warn("periodic log flush failed")
		}
	}); err != nil {
		return err
	}
	if _, err := c.AddFunc("30 2 * * *", func() {
		if err := las.ArchiveOldLogs(config.AppConfig.LogArchiveDays); err != nil {
			logrus.WithError(err).Warn("periodic log archive failed")
		}
	}); err != nil {
		return err
	}

	c.Start()
	las.scheduler = c

	// One immediate flush so a restart does not strand cached logs
	go func() {
		if err := las.FlushCachedLogsToDatabase(); err != nil {
			logrus.WithError(err).Warn("initial log flush failed")
		}
	}()

	return nil
}

// StopLogMaintenanceScheduler stops the maintenance jobs
func (las *LogArchiveService) StopLogMaintenanceScheduler() {
	if las.scheduler != nil {
		las.scheduler.Stop()
		las.scheduler = nil
	}
}
