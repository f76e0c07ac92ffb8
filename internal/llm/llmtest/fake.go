// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/wine-enricher/internal/llm"
)

// Reply is one scripted answer: Text, or Err when set.
type Reply struct {
	Text string
	Err  error
}

// Call records one Complete invocation.
type Call struct {
	Prompt      string
	Model       string
	Temperature float64
}

// Client replays replies in order. Once they run out, Fallback is returned.
type Client struct {
	mu       sync.Mutex
	replies  []Reply
	Fallback Reply
	Calls    []Call
	Closed   bool
}

// New returns a client that answers with replies in order.
func New(replies ...Reply) *Client {
	return &Client{replies: replies}
}

// Complete implements llm.Client.
func (c *Client) Complete(_ context.Context, prompt, model string, temperature float64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls = append(c.Calls, Call{Prompt: prompt, Model: model, Temperature: temperature})
	r := c.Fallback
	if len(c.replies) > 0 {
		r = c.replies[0]
		c.replies = c.replies[1:]
	}
	if r.Err != nil {
		return "", r.Err
	}
	return r.Text, nil
}

// CallCount returns how many calls were made.
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}

// Provider implements llm.Client.
func (c *Client) Provider() llm.Provider { return "fake" }

// Close implements llm.Client.
func (c *Client) Close() error {
	c.mu.Lock()
	c.Closed = true
	c.mu.Unlock()
	return nil
}
