package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/clipvault/backend/internal/config"
)

// S3Authorizer issues presigned PUT URLs for direct client uploads to an
// S3-compatible object store. Presigning is a local signing operation; the
// store is never contacted until the client uploads.
type S3Authorizer struct {
	presigner *s3.PresignClient
	bucket    string
	keyPrefix string
	ttl       time.Duration
	now       func() time.Time
}

// NewS3Authorizer configures a presigner targeting the provided object store.
func NewS3Authorizer(ctx context.Context, cfg config.ObjectStoreConfig, ttl time.Duration) (*S3Authorizer, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 authorizer: bucket is required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if strings.TrimSpace(cfg.Endpoint) != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{
					URL:           cfg.Endpoint,
					SigningRegion: cfg.Region,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &S3Authorizer{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// Authorize presigns a PUT for a freshly generated object key.
func (a *S3Authorizer) Authorize(ctx context.Context) (Credentials, error) {
	key := path.Join(a.keyPrefix, uuid.NewString())

	req, err := a.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = a.ttl
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("presign upload for %s: %w", key, err)
	}

	return Credentials{
		UploadURL: req.URL,
		Expire:    a.now().Add(a.ttl).Unix(),
	}, nil
}

var _ Authorizer = (*S3Authorizer)(nil)
