// Package s3 implements object storage for uploaded build artifacts. Amazon
// S3 (and compatible services), Google Cloud Storage, Azure Blob Storage and
// plain filesystem directories are supported.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	gcs "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"google.golang.org/api/option"

	"github.com/tracefront/build-plane/internal/config"
)

// ObjectStorage is the interface for storing and retrieving artifacts by key.
type ObjectStorage interface {
	Upload(ctx context.Context, body io.Reader, key string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

// New instantiates the storage provider named by the configuration. An
// unconfigured storage is an error; callers are expected to check
// ObjectStorage.Empty first.
func New(ctx context.Context, cfg config.ObjectStorage) (ObjectStorage, error) {
	switch {
	case cfg.AmazonS3 != nil:
		return newAmazonS3(ctx, cfg.AmazonS3)
	case cfg.GCPCloudStorage != nil:
		return newGCPCloudStorage(ctx, cfg.GCPCloudStorage)
	case cfg.AzureBlobStorage != nil:
		return newAzureBlobStorage(ctx, cfg.AzureBlobStorage)
	case cfg.FileSystem != nil:
		return newFileSystemStorage(cfg.FileSystem)
	}
	return nil, errors.New("no artifact storage provider configured")
}

type AmazonS3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

func newAmazonS3(ctx context.Context, c *config.AmazonS3) (*AmazonS3, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}

	if c.Credentials != nil {
		secret, err := c.Credentials.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		aws, ok := secret.(config.SecretAWS)
		if !ok {
			return nil, fmt.Errorf("expected aws_auth credentials for S3 storage, got %T", secret)
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(aws.AccessKeyID, aws.SecretAccessKey, aws.SessionToken)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.URL != "" {
			o.BaseEndpoint = aws.String(c.URL)
			o.UsePathStyle = true // Test servers do not resolve bucket subdomains.
		}
	})

	return &AmazonS3{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   c.Bucket,
		prefix:   c.Prefix,
	}, nil
}

func (a *AmazonS3) Upload(ctx context.Context, body io.Reader, key string) error {
	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(join(a.prefix, key)),
		Body:   body,
	})
	return err
}

func (a *AmazonS3) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(join(a.prefix, key)),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

type GCPCloudStorage struct {
	client *gcs.Client
	bucket string
	prefix string
}

func newGCPCloudStorage(ctx context.Context, c *config.GCPCloudStorage) (*GCPCloudStorage, error) {
	var opts []option.ClientOption

	if c.Credentials != nil {
		secret, err := c.Credentials.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		gcp, ok := secret.(config.SecretGCP)
		if !ok {
			return nil, fmt.Errorf("expected gcp_auth credentials for GCS storage, got %T", secret)
		}
		switch {
		case gcp.Credentials != "":
			opts = append(opts, option.WithCredentialsJSON([]byte(gcp.Credentials)))
		case gcp.APIKey != "":
			opts = append(opts, option.WithAPIKey(gcp.APIKey))
		}
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GCPCloudStorage{client: client, bucket: c.Bucket, prefix: c.Prefix}, nil
}

func (g *GCPCloudStorage) Upload(ctx context.Context, body io.Reader, key string) error {
	w := g.client.Bucket(g.bucket).Object(join(g.prefix, key)).NewWriter(ctx)
	if _, err := io.Copy(w, body); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (g *GCPCloudStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return g.client.Bucket(g.bucket).Object(join(g.prefix, key)).NewReader(ctx)
}

type AzureBlobStorage struct {
	client    *azblob.Client
	container string
	prefix    string
}

func newAzureBlobStorage(ctx context.Context, c *config.AzureBlobStorage) (*AzureBlobStorage, error) {
	var client *azblob.Client
	var err error

	if c.Credentials != nil {
		secret, err2 := c.Credentials.Resolve(ctx)
		if err2 != nil {
			return nil, err2
		}
		azure, ok := secret.(config.SecretAzure)
		if !ok {
			return nil, fmt.Errorf("expected azure_auth credentials for blob storage, got %T", secret)
		}
		key, err2 := azblob.NewSharedKeyCredential(azure.AccountName, azure.AccountKey)
		if err2 != nil {
			return nil, err2
		}
		client, err = azblob.NewClientWithSharedKeyCredential(c.AccountURL, key, nil)
	} else {
		var cred azcore.TokenCredential
		cred, err = azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, err
		}
		client, err = azblob.NewClient(c.AccountURL, cred, nil)
	}
	if err != nil {
		return nil, err
	}

	return &AzureBlobStorage{client: client, container: c.Container, prefix: c.Prefix}, nil
}

func (a *AzureBlobStorage) Upload(ctx context.Context, body io.Reader, key string) error {
	_, err := a.client.UploadStream(ctx, a.container, join(a.prefix, key), body, nil)
	return err
}

func (a *AzureBlobStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := a.client.DownloadStream(ctx, a.container, join(a.prefix, key), nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

type FileSystemStorage struct {
	root string
}

func newFileSystemStorage(c *config.FileSystemStorage) (*FileSystemStorage, error) {
	if c.Path == "" {
		return nil, errors.New("filesystem storage requires a path")
	}
	return &FileSystemStorage{root: c.Path}, nil
}

func (f *FileSystemStorage) Upload(_ context.Context, body io.Reader, key string) error {
	dst := filepath.Join(f.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, body); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (f *FileSystemStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(f.root, filepath.FromSlash(key)))
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}
