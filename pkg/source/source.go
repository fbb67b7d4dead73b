// Package source opens input documents from local paths or S3 URIs.
//
// Large student datasets typically live in object storage; the decoder only
// needs an io.Reader, so both kinds of source come back as an io.ReadCloser.
// Sources ending in .gz are decompressed transparently.
package source

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ParseS3URI splits an s3://bucket/key URI into bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, "s3://") {
		return "", "", errors.New("invalid S3 URI: must start with s3://")
	}

	path := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(path, "/", 2)
	if parts[0] == "" {
		return "", "", errors.New("invalid S3 URI: missing bucket name")
	}
	if len(parts) < 2 || parts[1] == "" {
		return "", "", errors.New("invalid S3 URI: missing object key")
	}

	return parts[0], parts[1], nil
}

// IsS3URI reports whether the location names an S3 object.
func IsS3URI(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// Open returns a reader over the document at location, which is either a
// local file path or an s3:// URI. The caller must Close the reader; a
// source can only be consumed once, re-reading requires reopening.
func Open(ctx context.Context, location string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	var err error

	if IsS3URI(location) {
		rc, err = openS3(ctx, location)
	} else {
		rc, err = os.Open(location)
		if err != nil {
			err = fmt.Errorf("open %s: %w", location, err)
		}
	}
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(location, ".gz") {
		gz, err := gzip.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("open gzip %s: %w", location, err)
		}
		return &gzipReadCloser{gz: gz, underlying: rc}, nil
	}
	return rc, nil
}

func openS3(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	resp, err := s3.NewFromConfig(cfg).GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object s3://%s/%s: %w", bucket, key, err)
	}
	return resp.Body, nil
}

// gzipReadCloser closes both the gzip layer and the underlying source.
type gzipReadCloser struct {
	gz         *gzip.Reader
	underlying io.ReadCloser
}

func (g *gzipReadCloser) Read(p []byte) (int, error) {
	return g.gz.Read(p)
}

func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	if err := g.underlying.Close(); err != nil {
		return err
	}
	return gzErr
}
