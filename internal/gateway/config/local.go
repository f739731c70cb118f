package config

import (
	"os"
	"strings"
	"time"
)

// localExportConfig targets the MinIO container of the compose setup.
// EXPORT_S3_ENDPOINT=none keeps exports in memory.
func localExportConfig() ExportConfig {
	endpoint := firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_ENDPOINT")), "minio:9000")
	if strings.EqualFold(endpoint, "none") {
		endpoint = ""
	}
	return ExportConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER")), "interiorviz"),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD")), "interiorviz123"),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_BUCKET")), "interiorviz-renders"),
		UseSSL:    false,
		Expiry:    envDuration("EXPORT_URL_EXPIRY", time.Hour),
	}
}
