package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"
)

// S3Options configures an S3 client for NewS3Client.
type S3Options struct {
	Region string

	// Endpoint overrides the AWS endpoint, e.g. for MinIO or a local emulator.
	// Path-style addressing is used when set.
	Endpoint string

	// Anonymous disables request signing, for public buckets.
	Anonymous bool

	// AccessKeyID and SecretAccessKey are static credentials.
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds an S3 client from explicit options.
func NewS3Client(opts S3Options) *s3.Client {
	o := s3.Options{Region: opts.Region}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	}
	switch {
	case opts.Anonymous:
		o.Credentials = aws.AnonymousCredentials{}
	case opts.AccessKeyID != "":
		creds := aws.Credentials{
			AccessKeyID:     opts.AccessKeyID,
			SecretAccessKey: opts.SecretAccessKey,
			Source:          "blogshell",
		}
		o.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return creds, nil
		})
	}
	return s3.New(o)
}

// S3Store reads posts stored as JSON objects named {prefix}{id}.json.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates a store for the objects under prefix in bucket.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) key(id int) string {
	return s.prefix + strconv.Itoa(id) + ".json"
}

// listConcurrency bounds the GetObject calls a single List issues at once.
const listConcurrency = 8

// List implements Store. Objects deleted between the listing and the fetch
// are skipped.
func (s *S3Store) List(ctx context.Context) ([]Post, error) {
	var ids []int
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, unavailable("s3", err)
		}
		for _, obj := range page.Contents {
			if id, ok := s.idOf(aws.ToString(obj.Key)); ok {
				ids = append(ids, id)
			}
		}
	}

	found := make([]*Post, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			p, err := s.Get(gctx, id)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			found[i] = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Post, 0, len(found))
	for _, p := range found {
		if p != nil {
			out = append(out, *p)
		}
	}
	sortPosts(out)
	return out, nil
}

// idOf extracts the post ID from an object key.
func (s *S3Store) idOf(key string) (int, bool) {
	name, ok := strings.CutPrefix(key, s.prefix)
	if !ok {
		return 0, false
	}
	name, ok = strings.CutSuffix(name, ".json")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(name)
	return id, err == nil
}

// Get implements Store.
func (s *S3Store) Get(ctx context.Context, id int) (*Post, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return nil, unavailable("s3", err)
	}
	defer out.Body.Close()

	var p Post
	if err := json.NewDecoder(out.Body).Decode(&p); err != nil {
		return nil, unavailable("s3", fmt.Errorf("decode %s: %w", s.key(id), err))
	}
	if p.ID == 0 {
		p.ID = id
	}
	return &p, nil
}
