package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dexscraper/internal/components/assert"
	"dexscraper/internal/components/telemetry"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	report_object_store_store  = "object-store.store"
	report_object_store_policy = "object-store.policy"
)

const DefaultContentType = "image/png"

// ObjectPutter is the part of *minio.Client the object store uses.
type ObjectPutter interface {
	PutObject(
		ctx context.Context,
		bucketName, objectName string,
		reader io.Reader,
		objectSize int64,
		opts minio.PutObjectOptions,
	) (minio.UploadInfo, error)
}

// Policy restricts which bucket and which key space a run may write to.
type Policy struct {
	AllowedBucket  string
	RequiredPrefix string
}

func (p Policy) Validate() error {
	if strings.TrimSpace(p.AllowedBucket) == "" {
		return errors.New("sink: policy allowed bucket is required")
	}
	if strings.TrimSpace(p.RequiredPrefix) == "" {
		return errors.New("sink: policy required prefix is required")
	}
	return nil
}

// Check returns a *PolicyViolation if bucket/key falls outside the policy.
func (p Policy) Check(bucket, key string) error {
	if bucket != p.AllowedBucket {
		return &PolicyViolation{
			Bucket: bucket,
			Key:    key,
			Reason: fmt.Sprintf("bucket must be %q", p.AllowedBucket),
		}
	}
	if !strings.HasPrefix(key, p.RequiredPrefix) {
		return &PolicyViolation{
			Bucket: bucket,
			Key:    key,
			Reason: fmt.Sprintf("key must start with %q", p.RequiredPrefix),
		}
	}
	return nil
}

type ObjectStoreOptions struct {
	Bucket string
	Policy Policy
	// ContentType is sent with every object regardless of what the bytes
	// actually are, defaults to DefaultContentType.
	ContentType string
}

// ObjectStore writes assets into a bucket. Failed writes are reported and
// returned but never retried.
type ObjectStore struct {
	client      ObjectPutter
	bucket      string
	policy      Policy
	contentType string
	tel         telemetry.API
}

func NewObjectStore(client ObjectPutter, opts ObjectStoreOptions, tel telemetry.API) (*ObjectStore, error) {
	assert.NotNil(client)
	assert.NotNil(tel)

	err := opts.Policy.Validate()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("sink: bucket is required")
	}
	if opts.ContentType == "" {
		opts.ContentType = DefaultContentType
	}

	return &ObjectStore{
		client:      client,
		bucket:      opts.Bucket,
		policy:      opts.Policy,
		contentType: opts.ContentType,
		tel:         telemetry.NewScopedAPI("sink", tel),
	}, nil
}

func (o *ObjectStore) Describe(key string) string {
	return fmt.Sprintf("%s/%s", o.bucket, key)
}

func (o *ObjectStore) Store(ctx context.Context, key string, data []byte) error {
	assert.NotEmptyStr(o.bucket)

	err := o.policy.Check(o.bucket, key)
	if err != nil {
		o.tel.ReportBroken(report_object_store_policy, err)
		return err
	}

	_, err = o.client.PutObject(
		ctx,
		o.bucket, key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: o.contentType},
	)
	if err != nil {
		o.tel.ReportBroken(
			report_object_store_store,
			fmt.Errorf("put object: %w", err),
			o.Describe(key),
		)
		return fmt.Errorf("%w: %s: %w", ErrStoreFailed, o.Describe(key), err)
	}
	return nil
}

type MinioOptions struct {
	Endpoint string
	Region   string
	Secure   bool
}

// NewMinioClient connects to an S3 compatible endpoint, credentials come
// from the usual places: AWS_* or MINIO_* environment variables, the AWS
// credentials file, then instance metadata.
func NewMinioClient(opts MinioOptions) (*minio.Client, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("sink: object store endpoint is required")
	}
	creds := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.EnvMinio{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})
	return minio.New(opts.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: opts.Secure,
		Region: opts.Region,
	})
}
