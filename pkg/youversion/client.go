package youversion

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/PandaWhoCodes/youversion/internal/platform/httpclient"
	"github.com/PandaWhoCodes/youversion/pkg/apierr"
	"github.com/PandaWhoCodes/youversion/pkg/result"
)

// Client is the blocking YouVersion client. It is safe for concurrent use.
//
// Every method returns (Result, error). A non-nil error is an
// infrastructure failure (see apierr) or a decode failure, and the Result
// is then the zero value. Otherwise the Result holds either the decoded
// value or a domain error.
type Client struct {
	http *httpclient.Client
	log  *slog.Logger
}

// New creates a Client authenticated with token. The Client owns one
// connection pool; release it with Close.
func New(token string, opts ...Option) (*Client, error) {
	s := newSettings(opts)
	hc, err := httpclient.New(token, s.httpOptions()...)
	if err != nil {
		return nil, apierr.Wrap(err, "youversion: new client")
	}
	return &Client{http: hc, log: s.logger}, nil
}

// Close releases pooled connections. Calling it more than once is a no-op.
// Calls made after Close fail with apierr.ErrClosed.
func (c *Client) Close() error {
	return c.http.Close()
}

// domainFunc maps an endpoint-specific status to a domain error, or nil
// when the status has no meaning for that endpoint.
type domainFunc func(status int, msg string) apierr.DomainError

type call struct {
	path   string
	query  url.Values
	header http.Header
	domain domainFunc
}

// fetch performs one GET and interprets the response for T.
func fetch[T any](ctx context.Context, c *Client, cl call) (result.Result[T], error) {
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   cl.path,
		Query:  cl.query,
		Header: cl.header,
	})
	if err != nil {
		return result.Result[T]{}, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		v, err := decode[T](resp.Body)
		if err != nil {
			c.log.Warn("response does not match schema", slog.String("path", cl.path), slog.Any("error", err))
			return result.Result[T]{}, err
		}
		return result.Success(v), nil
	}

	msg := apierr.MessageFromBody(resp.Body)
	if cl.domain != nil {
		if de := cl.domain(resp.StatusCode, msg); de != nil {
			c.log.Debug("domain error", slog.String("path", cl.path), slog.String("kind", de.Kind().String()), slog.String("error", de.Error()))
			return result.Failure[T](de), nil
		}
	}
	return result.Result[T]{}, &apierr.StatusError{StatusCode: resp.StatusCode, Message: msg}
}

func notFoundOn(res apierr.Resource, id, fallback string) domainFunc {
	return func(status int, msg string) apierr.DomainError {
		if status != http.StatusNotFound {
			return nil
		}
		if msg == "" {
			msg = fallback
		}
		return apierr.NotFoundError{Resource: res, Identifier: id, Message: msg}
	}
}

func invalidOn(field, fallback string) domainFunc {
	return func(status int, msg string) apierr.DomainError {
		if status != http.StatusBadRequest {
			return nil
		}
		if msg == "" {
			msg = fallback
		}
		return apierr.ValidationError{Field: field, Reason: msg}
	}
}

func firstOf(fns ...domainFunc) domainFunc {
	return func(status int, msg string) apierr.DomainError {
		for _, fn := range fns {
			if de := fn(status, msg); de != nil {
				return de
			}
		}
		return nil
	}
}
