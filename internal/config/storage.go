package config

import (
	"errors"

	"github.com/tracefront/build-plane/internal/util"
)

// ObjectStorage selects where uploaded artifacts are stored. At most one
// provider may be configured.
type ObjectStorage struct {
	AmazonS3         *AmazonS3          `json:"aws,omitempty"`
	GCPCloudStorage  *GCPCloudStorage   `json:"gcp,omitempty"`
	AzureBlobStorage *AzureBlobStorage  `json:"azure,omitempty"`
	FileSystem       *FileSystemStorage `json:"filesystem,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

func (o *ObjectStorage) Equal(other *ObjectStorage) bool {
	return o.AmazonS3.Equal(other.AmazonS3) &&
		o.GCPCloudStorage.Equal(other.GCPCloudStorage) &&
		o.AzureBlobStorage.Equal(other.AzureBlobStorage) &&
		o.FileSystem.Equal(other.FileSystem)
}

func (o *ObjectStorage) Validate() error {
	var n int
	for _, set := range []bool{o.AmazonS3 != nil, o.GCPCloudStorage != nil, o.AzureBlobStorage != nil, o.FileSystem != nil} {
		if set {
			n++
		}
	}
	if n > 1 {
		return errors.New("artifact storage must configure at most one provider")
	}
	return nil
}

// Empty reports whether no provider is configured.
func (o *ObjectStorage) Empty() bool {
	return o.AmazonS3 == nil && o.GCPCloudStorage == nil && o.AzureBlobStorage == nil && o.FileSystem == nil
}

type AmazonS3 struct {
	Bucket      string     `json:"bucket"`
	Prefix      string     `json:"prefix,omitempty"`
	Region      string     `json:"region,omitempty"`
	URL         string     `json:"url,omitempty"` // Endpoint override, used for testing.
	Credentials *SecretRef `json:"credentials,omitempty"` // Schema validation overrides this to string type.

	_ struct{} `additionalProperties:"false"`
}

func (a *AmazonS3) Equal(other *AmazonS3) bool {
	return util.FastEqual(a, other, func(a, other *AmazonS3) bool {
		return a.Bucket == other.Bucket &&
			a.Prefix == other.Prefix &&
			a.Region == other.Region &&
			a.URL == other.URL &&
			a.Credentials.Equal(other.Credentials)
	})
}

type GCPCloudStorage struct {
	Project     string     `json:"project"`
	Bucket      string     `json:"bucket"`
	Prefix      string     `json:"prefix,omitempty"`
	Credentials *SecretRef `json:"credentials,omitempty"` // Schema validation overrides this to string type.

	_ struct{} `additionalProperties:"false"`
}

func (g *GCPCloudStorage) Equal(other *GCPCloudStorage) bool {
	return util.FastEqual(g, other, func(g, other *GCPCloudStorage) bool {
		return g.Project == other.Project &&
			g.Bucket == other.Bucket &&
			g.Prefix == other.Prefix &&
			g.Credentials.Equal(other.Credentials)
	})
}

type AzureBlobStorage struct {
	AccountURL  string     `json:"account_url"`
	Container   string     `json:"container"`
	Prefix      string     `json:"prefix,omitempty"`
	Credentials *SecretRef `json:"credentials,omitempty"` // Schema validation overrides this to string type.

	_ struct{} `additionalProperties:"false"`
}

func (a *AzureBlobStorage) Equal(other *AzureBlobStorage) bool {
	return util.FastEqual(a, other, func(a, other *AzureBlobStorage) bool {
		return a.AccountURL == other.AccountURL &&
			a.Container == other.Container &&
			a.Prefix == other.Prefix &&
			a.Credentials.Equal(other.Credentials)
	})
}

type FileSystemStorage struct {
	Path string `json:"path"`

	_ struct{} `additionalProperties:"false"`
}

func (f *FileSystemStorage) Equal(other *FileSystemStorage) bool {
	return util.FastEqual(f, other, func(f, other *FileSystemStorage) bool {
		return f.Path == other.Path
	})
}
