package storage

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client implements Client on top of an S3 bucket, scoped to an optional
// key prefix. Listings use the "/" delimiter so directories surface one
// level at a time, matching the flat-API contract.
//
// ListObjectsV2 does not return SHA-256 checksums, so remote entries carry
// an empty Checksum and the planner falls back to size comparison.
type S3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string // "" or key prefix ending with "/"
}

// NewS3Client creates a client for s3://bucket/prefix.
func NewS3Client(cfg aws.Config, bucket, prefix string) *S3Client {
	client := s3.NewFromConfig(cfg)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Client{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

// ParseS3URI splits s3://bucket/prefix into its parts.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(uri, "s3://") {
		return "", "", fmt.Errorf("URI must start with s3://")
	}

	rest := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(rest, "/", 2)

	bucket = parts[0]
	if len(parts) > 1 {
		prefix = parts[1]
	}

	if bucket == "" {
		return "", "", fmt.Errorf("bucket name cannot be empty")
	}

	return bucket, prefix, nil
}

func (c *S3Client) List(ctx context.Context, dir string) ([]ObjectMeta, error) {
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	fullPrefix := c.prefix + dir

	var metas []ObjectMeta

	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(c.bucket),
		Prefix:    aws.String(fullPrefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, newError("list", dir, classifyAWS(err))
		}

		for _, cp := range page.CommonPrefixes {
			if cp.Prefix == nil {
				continue
			}
			metas = append(metas, ObjectMeta{
				Key:         strings.TrimPrefix(*cp.Prefix, c.prefix),
				IsDirectory: true,
			})
		}

		for _, obj := range page.Contents {
			if obj.Key == nil || obj.Size == nil {
				continue
			}
			key := strings.TrimPrefix(*obj.Key, c.prefix)
			// The prefix itself can appear as a zero-byte marker object.
			if key == dir || key == "" {
				continue
			}
			metas = append(metas, ObjectMeta{
				Key:  key,
				Size: aws.ToInt64(obj.Size),
			})
		}
	}

	return metas, nil
}

func (c *S3Client) Upload(ctx context.Context, key string, body io.Reader, size int64, checksum, contentType string, fn ProgressFunc) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.prefix + key),
		Body:   newProgressReader(body, fn),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if checksum != "" {
		b64, err := hexToBase64(checksum)
		if err != nil {
			return newError("upload", key, fmt.Errorf("encode checksum: %w", err))
		}
		input.ChecksumAlgorithm = types.ChecksumAlgorithmSha256
		input.ChecksumSHA256 = aws.String(b64)
	}

	if _, err := c.uploader.Upload(ctx, input); err != nil {
		return newError("upload", key, classifyAWS(err))
	}
	return nil
}

func (c *S3Client) Download(ctx context.Context, key string, w io.Writer, fn ProgressFunc) error {
	resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.prefix + key),
	})
	if err != nil {
		return newError("download", key, classifyAWS(err))
	}
	defer resp.Body.Close()

	if _, err := io.Copy(newProgressWriter(w, fn), resp.Body); err != nil {
		return newError("download", key, fmt.Errorf("copy body: %w", err))
	}
	return nil
}

func (c *S3Client) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.prefix + key),
	})
	if err != nil {
		return newError("delete", key, classifyAWS(err))
	}
	return nil
}

// classifyAWS maps SDK errors onto the error taxonomy.
func classifyAWS(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case "BadDigest", "InvalidDigest":
			return fmt.Errorf("%w: %v", ErrChecksumMismatch, err)
		}
	}
	return err
}

func hexToBase64(hexDigest string) (string, error) {
	raw, err := hex.DecodeString(hexDigest)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
