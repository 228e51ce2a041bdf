package s3backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v2/log"
)

// Client copies sideloaded featured images and their variants to a bucket.
type Client struct {
	api *s3.Client
	cfg *Config
}

// NewClient builds the bucket client. The bucket has to answer a HEAD request,
// so a misconfigured mirror fails at startup rather than on the first import.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if !cfg.Enabled {
		return nil, errors.New("S3 mirror is disabled")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// S3 compatible stores (MinIO, R2, Spaces) need path style addressing
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})
	if _, err := api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.BucketName)}); err != nil {
		return nil, fmt.Errorf("bucket %s not reachable: %w", cfg.BucketName, err)
	}

	log.Infof("[S3Mirror] mirroring featured images to s3://%s/%s", cfg.BucketName, cfg.Prefix)
	return &Client{api: api, cfg: cfg}, nil
}

// Put mirrors one local file and returns its object key. Files already in the
// bucket are left alone; sideloaded names are unique per download.
func (c *Client) Put(ctx context.Context, path string) (string, error) {
	key := c.cfg.ObjectKey(path)
	if ok, err := c.exists(ctx, key); err != nil {
		return "", err
	} else if ok {
		return key, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.cfg.BucketName),
		Key:           aws.String(key),
		Body:          f,
		ContentType:   aws.String(contentType(filepath.Ext(path))),
		ContentLength: aws.Int64(st.Size()),
		CacheControl:  aws.String("public, max-age=31536000"),
	})
	if err != nil {
		return "", fmt.Errorf("mirroring %s: %w", key, err)
	}
	log.Debugf("[S3Mirror] %s -> s3://%s/%s (%d bytes)", filepath.Base(path), c.cfg.BucketName, key, st.Size())
	return key, nil
}

func (c *Client) exists(ctx context.Context, key string) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.cfg.BucketName),
		Key:    aws.String(key),
	})
	var nf *types.NotFound
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &nf):
		return false, nil
	default:
		return false, fmt.Errorf("checking %s: %w", key, err)
	}
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

func contentType(ext string) string {
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
