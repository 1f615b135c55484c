package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/arloliu/dlf/compress"
	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/internal/options"
)

// HTTPSource fetches run streams from an upload service, at
// {baseURL}/meta.dlf and so on.
type HTTPSource struct {
	client      *resty.Client
	compression format.CompressionType
}

var _ Source = (*HTTPSource)(nil)

// HTTPOption configures an HTTPSource.
type HTTPOption = options.Option[*HTTPSource]

// WithCompression fetches {name}{suffix} and decompresses it, for services that
// store runs compressed.
func WithCompression(ct format.CompressionType) HTTPOption {
	return options.New(func(s *HTTPSource) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		s.compression = ct

		return nil
	})
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return options.NoError(func(s *HTTPSource) {
		s.client.SetTimeout(d)
	})
}

// WithHeader adds a header to every request, e.g. an API token.
func WithHeader(key, value string) HTTPOption {
	return options.NoError(func(s *HTTPSource) {
		s.client.SetHeader(key, value)
	})
}

// WithRetries retries failed requests count times.
func WithRetries(count int) HTTPOption {
	return options.NoError(func(s *HTTPSource) {
		s.client.SetRetryCount(count)
	})
}

// NewHTTPSource creates a source for the run served under baseURL.
func NewHTTPSource(baseURL string, opts ...HTTPOption) (*HTTPSource, error) {
	return NewHTTPSourceWithClient(&http.Client{}, baseURL, opts...)
}

// NewHTTPSourceWithClient is like NewHTTPSource but sends requests through hc.
func NewHTTPSourceWithClient(hc *http.Client, baseURL string, opts ...HTTPOption) (*HTTPSource, error) {
	s := &HTTPSource{
		client:      resty.NewWithClient(hc).SetBaseURL(baseURL),
		compression: format.CompressionNone,
	}

	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *HTTPSource) Meta(ctx context.Context) ([]byte, error) {
	return s.fetch(ctx, MetaFile)
}

func (s *HTTPSource) Polled(ctx context.Context) ([]byte, error) {
	return s.fetch(ctx, PolledFile)
}

func (s *HTTPSource) Events(ctx context.Context) ([]byte, error) {
	return s.fetch(ctx, EventFile)
}

func (s *HTTPSource) fetch(ctx context.Context, name string) ([]byte, error) {
	path := "/" + name + s.compression.Suffix()

	resp, err := s.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, notFound(resp.Request.URL)
	case resp.IsError():
		return nil, fmt.Errorf("fetch %s: %s", resp.Request.URL, resp.Status())
	}

	out, err := compress.Decompress(s.compression, resp.Body())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	return out, nil
}
