// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrBadURI = errors.New("export target must look like s3://bucket/key")

// Putter is the slice of the S3 API needed for exports.
type Putter interface {
	PutObject(ctx context.Context, params *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
}

// Location is a parsed s3:// URI.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// ParseS3URI splits s3://bucket/some/key. Both bucket and key are required.
func ParseS3URI(uri string) (Location, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return Location{}, fmt.Errorf("%s: %w", uri, ErrBadURI)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || strings.Trim(key, "/") == "" {
		return Location{}, fmt.Errorf("%s: %w", uri, ErrBadURI)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// ContentType guesses the object content type from the output format.
func ContentType(output string) string {
	switch output {
	case "json", "raw":
		return "application/json"
	case "yaml":
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Export uploads body to loc.
func Export(ctx context.Context, p Putter, loc Location, body []byte, contentType string) error {
	log.WithField("target", loc.String()).Debug("exporting output")

	_, err := p.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:        awsv2.String(loc.Bucket),
		Key:           awsv2.String(loc.Key),
		Body:          bytes.NewReader(body),
		ContentLength: awsv2.Int64(int64(len(body))),
		ContentType:   awsv2.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to export to %s: %w", loc, err)
	}
	return nil
}
