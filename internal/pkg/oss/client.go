package oss

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"

	"github.com/shoplead/shoplead_server/config"
)

type Client struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	cdnDomain  string
}

// Enabled 未配置 bucket 时不归档
func Enabled(cfg *config.OSSConfig) bool {
	return cfg != nil && cfg.Endpoint != "" && cfg.BucketName != ""
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
	}, nil
}

// ArchiveKey 导出文件的归档路径 extracts/YYYY/MM/DD/<id>/<文件名>
func ArchiveKey(now time.Time, id, filename string) string {
	return fmt.Sprintf("extracts/%s/%s/%s", now.UTC().Format("2006/01/02"), id, path.Base(filepath.ToSlash(filename)))
}

// UploadExtract 归档一份导入的导出文件，返回访问 URL
func (c *Client) UploadExtract(filename string, r io.Reader) (string, error) {
	objectKey := ArchiveKey(time.Now(), uuid.NewString(), filename)

	err := c.bucket.PutObject(objectKey, r, oss.ContentType(ContentType(filename)))
	if err != nil {
		return "", fmt.Errorf("failed to upload extract: %w", err)
	}

	return c.GetURL(objectKey), nil
}

// GetURL 获取文件访问 URL
func (c *Client) GetURL(objectKey string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", c.bucketName, c.client.Config.Endpoint, objectKey)
}

// ContentType 根据扩展名获取 Content-Type
func ContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
