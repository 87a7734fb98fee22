package omnetup

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MirrorClient wraps the S3 client for private release mirrors
// (S3-compatible stores such as Cloudflare R2 or MinIO).
type MirrorClient struct {
	Client *s3.Client
	Bucket string
}

// parseS3URL splits s3://bucket/key/path into bucket and key.
func parseS3URL(raw string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(raw, "s3://")
	if trimmed == raw {
		return "", "", fmt.Errorf("not an s3 URL: %s", raw)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed s3 URL %q, expected s3://bucket/key", raw)
	}
	return parts[0], parts[1], nil
}

// NewMirrorClient initializes an S3 client from configuration values.
func NewMirrorClient(cfg *Config, bucket string) (*MirrorClient, error) {
	endpoint := cfg.Values["OMNETUP_S3_ENDPOINT"]
	accessKey := cfg.Values["OMNETUP_S3_ACCESS_KEY_ID"]
	secretKey := cfg.Values["OMNETUP_S3_SECRET_ACCESS_KEY"]
	region := cfg.Values["OMNETUP_S3_REGION"]
	if region == "" {
		region = "auto"
	}

	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("mirror credentials missing in configuration (OMNETUP_S3_ACCESS_KEY_ID, OMNETUP_S3_SECRET_ACCESS_KEY)")
	}

	options := []func(*config.LoadOptions) error{
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion(region),
	}

	if endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: endpoint}, nil
		})
		options = append(options, config.WithEndpointResolverWithOptions(resolver))
	}

	if Debug {
		options = append(options, config.WithClientLogMode(aws.LogSigning|aws.LogRetries|aws.LogRequest|aws.LogResponse))
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load mirror config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &MirrorClient{
		Client: client,
		Bucket: bucket,
	}, nil
}

// DownloadTo streams an object from the mirror into destPath.
func (m *MirrorClient) DownloadTo(ctx context.Context, key, destPath string) error {
	output, err := m.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	defer output.Body.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, output.Body); err != nil {
		return fmt.Errorf("failed to write mirror object to %s: %w", destPath, err)
	}
	return nil
}

// fetchFromMirror downloads an s3:// archive URL through the mirror client.
func fetchFromMirror(ctx context.Context, cfg *Config, rawURL, destPath string) error {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return err
	}

	client, err := NewMirrorClient(cfg, bucket)
	if err != nil {
		return err
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Fetching from mirror bucket %s: %s\n", bucket, key)
	return client.DownloadTo(ctx, key, destPath)
}
