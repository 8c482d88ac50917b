package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Remote keeps backup files off the device.
type Remote interface {
	Push(ctx context.Context, name string, r io.Reader) error
	Pull(ctx context.Context, name string) (io.ReadCloser, error)
	List(ctx context.Context) ([]Object, error)
}

type Object struct {
	Name     string
	Size     int64
	Modified time.Time
}

type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Prefix    string
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Remote stores backups in an S3 compatible bucket, e.g. MinIO.
type S3Remote struct {
	client s3API
	bucket string
	prefix string
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

func NewS3(ctx context.Context, c S3Config) (*S3Remote, error) {
	if c.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Remote(client, c.Bucket, c.Prefix), nil
}

func newS3Remote(client s3API, bucket, prefix string) *S3Remote {
	return &S3Remote{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (r *S3Remote) key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + "/" + name
}

// Push uploads the content of body under name. The body is buffered so the
// request can be signed.
func (r *S3Remote) Push(ctx context.Context, name string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(r.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

func (r *S3Remote) Pull(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(name)),
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	return out.Body, nil
}

// List returns the stored backups, newest first.
func (r *S3Remote) List(ctx context.Context) ([]Object, error) {
	in := &s3.ListObjectsV2Input{Bucket: aws.String(r.bucket)}
	if r.prefix != "" {
		in.Prefix = aws.String(r.prefix + "/")
	}

	var objects []Object
	for {
		out, err := r.client.ListObjectsV2(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("list backups: %w", err)
		}
		for _, obj := range out.Contents {
			objects = append(objects, Object{
				Name:     path.Base(aws.ToString(obj.Key)),
				Size:     aws.ToInt64(obj.Size),
				Modified: aws.ToTime(obj.LastModified),
			})
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		in.ContinuationToken = out.NextContinuationToken
	}

	slices.SortFunc(objects, func(a, b Object) int { return b.Modified.Compare(a.Modified) })
	return objects, nil
}
