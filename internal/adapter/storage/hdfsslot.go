package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/colinmarc/hdfs/v2"
	"github.com/niksmo/candle-shop/internal/core/port"
	"github.com/niksmo/candle-shop/pkg/retry"
)

var _ port.Slot = (*HDFSSlot)(nil)

type hdfsStorage interface {
	ReadFile(filename string) ([]byte, error)
	CreateFile(filename string) (io.WriteCloser, error)
	Remove(filename string) error
	MkdirAll(dirname string, perm fs.FileMode) error
}

// A HDFSClient adapts [*hdfs.Client] to the subset used by [HDFSSlot].
type HDFSClient struct {
	*hdfs.Client
}

func NewHDFSClient(addresses []string, user string) (HDFSClient, error) {
	const op = "NewHDFSClient"

	cl, err := hdfs.NewClient(hdfs.ClientOptions{
		Addresses: addresses,
		User:      user,
	})
	if err != nil {
		return HDFSClient{}, fmt.Errorf("%s: %w", op, err)
	}
	return HDFSClient{cl}, nil
}

func (c HDFSClient) CreateFile(filename string) (io.WriteCloser, error) {
	w, err := c.Client.Create(filename)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// A HDFSSlot stores every key as a JSON file in dir. HDFS rejects colons
// in path names, so they are replaced in file names.
type HDFSSlot struct {
	hdfs hdfsStorage
	dir  string
}

func NewHDFSSlot(hdfs hdfsStorage, dir string) (HDFSSlot, error) {
	const op = "NewHDFSSlot"

	if err := hdfs.MkdirAll(dir, 0o755); err != nil {
		return HDFSSlot{}, fmt.Errorf("%s: %w", op, err)
	}
	return HDFSSlot{hdfs: hdfs, dir: dir}, nil
}

func (s HDFSSlot) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "HDFSSlot.Get"

	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	b, err := s.hdfs.ReadFile(s.getFileName(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return string(b), true, nil
}

func (s HDFSSlot) Put(ctx context.Context, key, value string) error {
	const op = "HDFSSlot.Put"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	filepath := s.getFileName(key)

	err := s.hdfs.Remove(filepath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	w, err := s.hdfs.CreateFile(filepath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := io.WriteString(w, value); err != nil {
		_ = w.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.closeWriter(ctx, w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s HDFSSlot) getFileName(key string) string {
	return path.Join(s.dir, strings.ReplaceAll(key, ":", "_")+".json")
}

func (s HDFSSlot) closeWriter(ctx context.Context, w io.Closer) error {
	retryCfg := retry.RetryConfig{
		MaxAttempts: 5,
		Backoff:     retry.LineareBackoff(50 * time.Millisecond),
		ShouldRetry: func(err error) bool {
			return errors.Is(err, hdfs.ErrReplicating)
		},
	}
	return retry.Do(ctx, retryCfg, w.Close)
}
