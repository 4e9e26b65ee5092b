package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultRegion = "us-east-1"

// Store keeps rendered report artifacts and returns where each one landed
type Store interface {
	Put(ctx context.Context, accountID string, content []byte) (string, error)
}

// ObjectPutter is the part of the S3 client the store needs
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Options struct {
	// AWSProfile selects the shared config profile for s3:// locations
	AWSProfile string
	Now        func() time.Time
}

// New picks the backend from location: "s3://bucket/prefix" or a local directory
func New(ctx context.Context, location string, opts Options) (Store, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if bucket, prefix, ok := ParseS3(location); ok {
		awsCfg, err := loadConfig(ctx, opts.AWSProfile)
		if err != nil {
			return nil, err
		}
		return NewS3(s3.NewFromConfig(awsCfg), bucket, prefix, opts.Now), nil
	}
	return NewLocal(location, opts.Now)
}

func loadConfig(ctx context.Context, profile string) (awssdk.Config, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithDefaultRegion(DefaultRegion)}
	if profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return awssdk.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return awsCfg, nil
}

// ParseS3 splits "s3://bucket/some/prefix" into bucket and prefix
func ParseS3(location string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(location, "s3://")
	if !found {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, strings.Trim(prefix, "/"), true
}

func objectName(accountID string, at time.Time) (string, error) {
	account := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, accountID)
	if account == "" {
		return "", fmt.Errorf("invalid account id %q", accountID)
	}
	return path.Join(account, at.UTC().Format("20060102T150405.000000000Z")+".md"), nil
}

type localStore struct {
	dir string
	now func() time.Time
}

func NewLocal(dir string, now func() time.Time) (Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact directory is required")
	}
	if now == nil {
		now = time.Now
	}
	return &localStore{dir: dir, now: now}, nil
}

func (s *localStore) Put(ctx context.Context, accountID string, content []byte) (string, error) {
	name, err := objectName(accountID, s.now())
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return target, nil
}

type s3Store struct {
	client ObjectPutter
	bucket string
	prefix string
	now    func() time.Time
}

func NewS3(client ObjectPutter, bucket, prefix string, now func() time.Time) Store {
	if now == nil {
		now = time.Now
	}
	return &s3Store{client: client, bucket: bucket, prefix: prefix, now: now}
}

func (s *s3Store) Put(ctx context.Context, accountID string, content []byte) (string, error) {
	name, err := objectName(accountID, s.now())
	if err != nil {
		return "", err
	}

	key := name
	if s.prefix != "" {
		key = s.prefix + "/" + name
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(s.bucket),
		Key:         awssdk.String(key),
		Body:        bytes.NewReader(content),
		ContentType: awssdk.String("text/markdown; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
