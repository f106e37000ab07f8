// Package translate wraps Amazon Translate.
package translate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/sony/gobreaker"
)

type API interface {
	TranslateText(ctx context.Context, params *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

var _ API = (*translate.Client)(nil)

type Client struct {
	api API
	cb  *gobreaker.CircuitBreaker
}

type Option func(*Client)

// WithCircuitBreaker stops calling Amazon Translate for openFor after
// failures consecutive errors. While open, Translate fails immediately.
func WithCircuitBreaker(failures uint32, openFor time.Duration, onStateChange func(from, to gobreaker.State)) Option {
	return func(c *Client) {
		if failures == 0 {
			return
		}
		c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "translate",
			MaxRequests: 1,
			Timeout:     openFor,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: func(err error) bool {
				// a caller giving up says nothing about the service
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(_ string, from, to gobreaker.State) {
				if onStateChange != nil {
					onStateChange(from, to)
				}
			},
		})
	}
}

func New(api API, opts ...Option) *Client {
	c := &Client{api: api}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Translate returns text translated from the source to the target language.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	if c.cb == nil {
		return c.translate(ctx, text, source, target)
	}

	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.translate(ctx, text, source, target)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("translate text from %s to %s: %w", source, target, err)
		}
		return "", err
	}
	return out.(string), nil
}

func (c *Client) translate(ctx context.Context, text, source, target string) (string, error) {
	out, err := c.api.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(source),
		TargetLanguageCode: aws.String(target),
	})
	if err != nil {
		return "", fmt.Errorf("translate text from %s to %s: %w", source, target, err)
	}
	return aws.ToString(out.TranslatedText), nil
}
