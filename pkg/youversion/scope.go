package youversion

import (
	"context"
	"errors"
)

// With creates a Client, runs fn and closes the Client on every exit path,
// including a panic in fn. Errors from fn and Close are joined.
func With(ctx context.Context, token string, fn func(context.Context, *Client) error, opts ...Option) (err error) {
	c, err := New(token, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(ctx, c)
}

// WithAsync is With for AsyncClient.
func WithAsync(ctx context.Context, token string, fn func(context.Context, *AsyncClient) error, opts ...Option) (err error) {
	c, err := NewAsync(token, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(ctx, c)
}
