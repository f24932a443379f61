package resource

import (
	"context"

	"github.com/TalbotKnighton/trendify/blobstore"
)

// ThrottledStore wraps a blobstore and charges every document read and
// write against the controller's I/O budget.
type ThrottledStore struct {
	inner blobstore.BlobStore
	rc    *Controller
}

// Throttle wraps a store. A nil controller returns the store unchanged.
func Throttle(inner blobstore.BlobStore, rc *Controller) blobstore.BlobStore {
	if rc == nil || rc.ioLimiter == nil {
		return inner
	}
	return &ThrottledStore{inner: inner, rc: rc}
}

func (s *ThrottledStore) ReadAll(ctx context.Context, name string) ([]byte, error) {
	data, err := s.inner.ReadAll(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.rc.AcquireIO(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *ThrottledStore) Write(ctx context.Context, name string, data []byte) error {
	if err := s.rc.AcquireIO(ctx, len(data)); err != nil {
		return err
	}
	return s.inner.Write(ctx, name, data)
}

func (s *ThrottledStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

func (s *ThrottledStore) Exists(ctx context.Context, name string) (bool, error) {
	return s.inner.Exists(ctx, name)
}

func (s *ThrottledStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}
