package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	f.bucket = aws.StringValue(in.Bucket)
	f.key = aws.StringValue(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestClient_GetTokens(t *testing.T) {
	fake := &fakeS3{body: `[{"token": "token1234", "permissions": ["read", "write"]}]`}
	c := NewClientWithAPI(fake, "auth-bucket", "tokens/tokens.json")

	tokens, err := c.GetTokens(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "token1234", tokens[0].ID)
	assert.Equal(t, "auth-bucket", fake.bucket)
	assert.Equal(t, "tokens/tokens.json", fake.key)
}

func TestClient_GetTokensYAMLKey(t *testing.T) {
	fake := &fakeS3{body: "- token: a\n  permissions: [write]\n"}
	c := NewClientWithAPI(fake, "b", "tokens.yml")

	tokens, err := c.GetTokens(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "a", tokens[0].ID)
}

func TestClient_GetTokensObjectError(t *testing.T) {
	fake := &fakeS3{err: errors.New("NoSuchKey")}
	c := NewClientWithAPI(fake, "b", "tokens.json")

	_, err := c.GetTokens(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "s3://b/tokens.json")
}

func TestClient_GetTokensInvalidDocument(t *testing.T) {
	fake := &fakeS3{body: `[{"token": "a", "permissions": ["root"]}]`}
	c := NewClientWithAPI(fake, "b", "tokens.json")

	_, err := c.GetTokens(context.Background())
	assert.Error(t, err)
}
