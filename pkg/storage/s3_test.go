package storage

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{
			name:       "bucket only",
			uri:        "s3://my-bucket",
			wantBucket: "my-bucket",
		},
		{
			name:       "bucket with trailing slash",
			uri:        "s3://my-bucket/",
			wantBucket: "my-bucket",
		},
		{
			name:       "bucket and prefix",
			uri:        "s3://my-bucket/site/assets",
			wantBucket: "my-bucket",
			wantPrefix: "site/assets",
		},
		{
			name:    "missing scheme",
			uri:     "my-bucket/prefix",
			wantErr: true,
		},
		{
			name:    "empty bucket",
			uri:     "s3:///prefix",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, prefix, err := ParseS3URI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantPrefix, prefix)
		})
	}
}

func TestNewS3ClientNormalizesPrefix(t *testing.T) {
	cfg := aws.Config{Region: "us-east-1"}

	// Keys are appended directly to the prefix, so it must end with a
	// slash when non-empty.
	assert.Equal(t, "site/", NewS3Client(cfg, "bucket", "site").prefix)
	assert.Equal(t, "site/", NewS3Client(cfg, "bucket", "site/").prefix)
	assert.Equal(t, "", NewS3Client(cfg, "bucket", "").prefix)
}

func TestHexToBase64(t *testing.T) {
	// SHA-256("hello") in the two encodings S3 and the flat API use.
	b64, err := hexToBase64("2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
	require.NoError(t, err)
	assert.Equal(t, "LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ=", b64)

	_, err = hexToBase64("not-hex")
	assert.Error(t, err)
}
