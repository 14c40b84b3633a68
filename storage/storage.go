package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"orghub/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/sirupsen/logrus"
)

// Store removes objects referenced by records, e.g. a member photo.
type Store interface {
	Remove(ctx context.Context, key string) error
}

var (
	ActiveStore Store = NoopStore{}

	RemoveObjectFunc = RemoveObject
)

// RemoveObject deletes the stored object of a hard-deleted record. Failures are logged, the record
// deletion stands.
func RemoveObject(key string, s *session.Session) {
	key = strings.TrimSpace(key)
	if key == "" || ActiveStore == nil {
		return
	}
	if err := ActiveStore.Remove(s.TraceContext(), key); err != nil {
		logrus.WithField("key", key).Warnf("failed to remove stored object: %v", err)
	}
}

type NoopStore struct{}

func (NoopStore) Remove(ctx context.Context, key string) error {
	return nil
}

// LocalStore keeps objects as files below Root.
type LocalStore struct {
	Root string
}

var ErrOutsideRoot = errors.New("object key escapes storage root")

func (l *LocalStore) Remove(ctx context.Context, key string) error {
	p, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *LocalStore) resolve(key string) (string, error) {
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return "", err
	}
	p := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(key, "/")))
	if p == root || !strings.HasPrefix(p, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, key)
	}
	return p, nil
}

// OSSStore keeps objects in an aliyun OSS bucket.
type OSSStore struct {
	Bucket *oss.Bucket
}

func (o *OSSStore) Remove(ctx context.Context, key string) error {
	var childSpan opentracing.Span
	if parentSpan := opentracing.SpanFromContext(ctx); parentSpan != nil {
		childSpan = parentSpan.Tracer().StartSpan("delete-object", opentracing.ChildOf(parentSpan.Context()))
		childSpan.SetTag("object-key", key)
		defer childSpan.Finish()
	}

	err := o.Bucket.DeleteObject(strings.TrimPrefix(key, "/"))
	if childSpan != nil {
		ext.Error.Set(childSpan, err != nil)
	}
	return err
}

func BuildBucket(endpoint, accesskey, secretKey, bucketName string) (*oss.Bucket, error) {
	// endpoint http://oss-cn-hangzhou.aliyuncs.com
	cli, err := oss.New(endpoint, accesskey, secretKey, oss.HTTPClient(nil))
	if err != nil {
		return nil, err
	}
	return cli.Bucket(bucketName)
}
