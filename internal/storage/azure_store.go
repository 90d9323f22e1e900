package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// azureAPI is the subset of *azblob.Client used here.
type azureAPI interface {
	CreateContainer(ctx context.Context, containerName string, o *azblob.CreateContainerOptions) (azblob.CreateContainerResponse, error)
	UploadStream(ctx context.Context, containerName, blobName string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error)
	URL() string
}

// AzureStore stores blobs in an Azure Storage container.
type AzureStore struct {
	client    azureAPI
	container string
}

// NewAzureStore connects with an Azure Storage connection string.
func NewAzureStore(connString, container string) (*AzureStore, error) {
	client, err := azblob.NewClientFromConnectionString(connString, nil)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}
	return &AzureStore{client: client, container: container}, nil
}

func newAzureStoreWithClient(client azureAPI, container string) *AzureStore {
	return &AzureStore{client: client, container: container}
}

func (s *AzureStore) Container() string { return s.container }

func (s *AzureStore) CreateContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %s: %w", s.container, err)
	}
	return nil
}

func (s *AzureStore) Upload(ctx context.Context, name string, r io.ReadSeeker, opts UploadOptions) error {
	o := &azblob.UploadStreamOptions{}
	if opts.ContentType != "" {
		o.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: &opts.ContentType}
	}
	if !opts.Overwrite {
		etag := azcore.ETagAny
		o.AccessConditions = &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{IfNoneMatch: &etag},
		}
	}
	_, err := s.client.UploadStream(ctx, s.container, name, r, o)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet) {
			return fmt.Errorf("%w: %s/%s", ErrBlobExists, s.container, name)
		}
		return fmt.Errorf("upload %s/%s: %w", s.container, name, err)
	}
	return nil
}

// URL returns https://<account>.blob.core.windows.net/<container>/<blob> for the
// public cloud; other endpoints keep their own service URL.
func (s *AzureStore) URL(name string) string {
	base := strings.TrimSuffix(s.client.URL(), "/")
	if u, err := url.JoinPath(base, s.container, name); err == nil {
		return u
	}
	return base + "/" + s.container + "/" + name
}
