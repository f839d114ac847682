package client

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"FormatConverter/internal/domain"
)

const (
	// MinTimeout matches the server's upstream bound; shorter client timeouts are raised to it.
	MinTimeout             = 60 * time.Second
	DefaultTimeout         = 65 * time.Second
	DefaultRevertDelay     = 300 * time.Millisecond
	DefaultMessageInterval = 2500 * time.Millisecond
)

// Fetcher performs the conversion request.
type Fetcher interface {
	Fetch(ctx context.Context, articleID int64, format domain.Format) (string, error)
}

// View is the page the widget drives.
type View interface {
	OriginalContent() string
	SetContent(html string)
	ScrollToContent()
	ShowLoading()
	SetLoadingText(text string)
	HideLoading()
	ShowError(message string)
	HideError()
	SetConverted(converted bool)
}

// Options tune timing and hooks; zero values select defaults.
type Options struct {
	Timeout         time.Duration
	RevertDelay     time.Duration
	NoRevertDelay   bool
	MessageInterval time.Duration
	OnFormatChanged func(articleID int64, format domain.Format)
	Logger          *slog.Logger
}

// Client is the original/loading/converted/error state machine behind the toggle button.
// At most one request is in flight; clicks while loading are ignored.
type Client struct {
	articleID int64
	fetcher   Fetcher
	view      View
	original  string
	opts      Options
	logger    *slog.Logger

	mu    sync.Mutex
	state State
	wg    sync.WaitGroup
}

// New captures the original content once; reverting always restores exactly that.
func New(articleID int64, fetcher Fetcher, view View, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Timeout < MinTimeout {
		opts.Timeout = MinTimeout
	}
	if opts.NoRevertDelay {
		opts.RevertDelay = 0
	} else if opts.RevertDelay <= 0 {
		opts.RevertDelay = DefaultRevertDelay
	}
	if opts.MessageInterval <= 0 {
		opts.MessageInterval = DefaultMessageInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		articleID: articleID,
		fetcher:   fetcher,
		view:      view,
		original:  view.OriginalContent(),
		opts:      opts,
		logger:    logger,
		state:     State{Status: StatusIdle},
	}
}

// State returns the current widget state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Click toggles between formats. It reports false when ignored because a request is in flight.
func (c *Client) Click() bool {
	c.mu.Lock()
	if c.state.Status == StatusLoading {
		c.mu.Unlock()
		c.logger.Debug("already converting, ignoring click")
		return false
	}
	revert := c.state.Status == StatusConverted
	c.state = State{Status: StatusLoading}
	c.wg.Add(1)
	c.mu.Unlock()

	c.view.HideError()
	c.view.ShowLoading()

	if revert {
		go c.revert()
	} else {
		go c.convert()
	}
	return true
}

// Retry replays the AP request after a failure; it is a no-op in any other state.
func (c *Client) Retry() bool {
	c.mu.Lock()
	failed := c.state.Status == StatusError
	c.mu.Unlock()
	if !failed {
		return false
	}
	return c.Click()
}

// Wait blocks until the running transition, if any, has settled.
func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) convert() {
	defer c.wg.Done()

	stop := c.rotateLoadingText()
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.Timeout)
	content, err := c.fetcher.Fetch(ctx, c.articleID, domain.FormatAP)
	cancel()
	stop()

	if err != nil {
		msg := ErrorMessage(err)
		c.logger.Warn("conversion failed", "article_id", c.articleID, "error", err)
		c.view.HideLoading()
		c.view.ShowError(msg)
		c.setState(State{Status: StatusError, Message: msg})
		return
	}

	c.show(content, true)
	c.setState(State{Status: StatusConverted})
	c.notify(domain.FormatAP)
}

func (c *Client) revert() {
	defer c.wg.Done()

	stop := c.rotateLoadingText()
	if c.opts.RevertDelay > 0 {
		time.Sleep(c.opts.RevertDelay)
	}
	stop()

	c.show(c.original, false)
	c.setState(State{Status: StatusIdle})
	c.notify(domain.FormatOriginal)
}

func (c *Client) show(content string, converted bool) {
	c.view.SetContent(content)
	c.view.SetConverted(converted)
	c.view.HideLoading()
	c.view.HideError()
	c.view.ScrollToContent()
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Client) notify(format domain.Format) {
	c.logger.Debug("format changed", "article_id", c.articleID, "format", format)
	if c.opts.OnFormatChanged != nil {
		c.opts.OnFormatChanged(c.articleID, format)
	}
}

// rotateLoadingText shows the first message immediately and advances on every interval.
// The returned func stops the rotation and waits for it to exit.
func (c *Client) rotateLoadingText() func() {
	c.view.SetLoadingText(LoadingMessages[0])

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(c.opts.MessageInterval)
		defer ticker.Stop()
		for i := 1; ; i++ {
			select {
			case <-done:
				return
			case <-ticker.C:
				c.view.SetLoadingText(LoadingMessages[i%len(LoadingMessages)])
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}

// ErrorMessage flattens a fetch failure into the text shown next to the retry link.
func ErrorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return msgTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return msgTimeout
	}

	var statusErr *HTTPError
	if errors.As(err, &statusErr) {
		if statusErr.Message != "" {
			return statusErr.Message
		}
		if statusErr.Code == http.StatusInternalServerError {
			return msgServer
		}
		return msgNetwork
	}

	return msgConnection
}
