package s3

import (
	"context"
	"fmt"
	"io"

	"token-service/internal/config"
	"token-service/internal/domain/token"
	"token-service/internal/repository"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

const (
	emptyAWSSessionToken         = ""
	maxDocumentBytes             = 16 << 20
	errFailedCreateAWSSessionFmt = "failed to create AWS session: %w"
	errFailedGetObjectFmt        = "failed to get token document s3://%s/%s: %w"
	errFailedReadObjectFmt       = "failed to read token document s3://%s/%s: %w"
)

// Client reads a token document stored as a single S3 object.
type Client struct {
	svc    s3iface.S3API
	bucket string
	key    string
}

func NewClient(cfg *config.AWSConfig, bucket, key string) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			emptyAWSSessionToken,
		),
	})
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	return NewClientWithAPI(s3.New(sess), bucket, key), nil
}

func NewClientWithAPI(svc s3iface.S3API, bucket, key string) *Client {
	return &Client{
		svc:    svc,
		bucket: bucket,
		key:    key,
	}
}

// GetTokens downloads and decodes the document. The key's extension picks
// the format.
func (c *Client) GetTokens(ctx context.Context) ([]token.Token, error) {
	out, err := c.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key),
	})
	if err != nil {
		return nil, fmt.Errorf(errFailedGetObjectFmt, c.bucket, c.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf(errFailedReadObjectFmt, c.bucket, c.key, err)
	}

	return repository.DecodeTokens(data, repository.FormatFromPath(c.key))
}
