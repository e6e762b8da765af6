// Package s3 implements the blob store driver on Amazon S3, the backend
// the hosted Genesiss Agents deployment persists to.
package s3

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"

	"github.com/genesiss-tech/genesiss/store"
)

type Client struct {
	client *awss3.Client
	bucket string
}

// NewClient builds an S3-backed driver over the given bucket, loading
// credentials from the default AWS provider chain.
func NewClient(ctx context.Context, bucket, region string) (store.Driver, error) {
	if bucket == "" {
		return nil, errors.New("bucket required")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load aws config")
	}

	return &Client{
		client: awss3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := c.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to get object %s", key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read object %s", key)
	}
	return data, nil
}

func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	_, err := c.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return errors.Wrapf(err, "failed to put object %s", key)
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	return errors.Wrapf(err, "failed to head bucket %s", c.bucket)
}

// Close is a no-op; the S3 client holds no pooled resources that need
// explicit release.
func (c *Client) Close() error {
	return nil
}
