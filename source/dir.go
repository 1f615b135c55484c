package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arloliu/dlf/compress"
	"github.com/arloliu/dlf/format"
)

// storedAs lists the forms a stream may be stored in, in lookup order.
var storedAs = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

// DirSource reads a run directory as written by the logger.
//
// For each stream the plain file (polled.dlf) is preferred; otherwise the
// first compressed variant found (polled.dlf.zst, .s2, .lz4) is decompressed.
type DirSource struct {
	dir string
}

var _ Source = (*DirSource)(nil)

// NewDirSource creates a source for the run directory dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Dir returns the run directory.
func (s *DirSource) Dir() string {
	return s.dir
}

func (s *DirSource) Meta(ctx context.Context) ([]byte, error) {
	return s.read(ctx, MetaFile)
}

func (s *DirSource) Polled(ctx context.Context) ([]byte, error) {
	return s.read(ctx, PolledFile)
}

func (s *DirSource) Events(ctx context.Context) ([]byte, error) {
	return s.read(ctx, EventFile)
}

// Path returns the path the stream is currently stored at and its compression.
func (s *DirSource) Path(name string) (string, format.CompressionType, error) {
	for _, ct := range storedAs {
		path := filepath.Join(s.dir, name+ct.Suffix())
		if _, err := os.Stat(path); err == nil {
			return path, ct, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", ct, err
		}
	}

	return "", format.CompressionNone, notFound(filepath.Join(s.dir, name))
}

func (s *DirSource) read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, ct, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(path)
		}

		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	out, err := compress.Decompress(ct, data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return out, nil
}
