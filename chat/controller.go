// Package chat turns user queries into transcript exchanges.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"xenora/answer"
	"xenora/log"
	"xenora/session"
	"xenora/transcript"
)

const (
	EmptyQueryBanner = "Please enter a query."
	FailureText      = "Error fetching response."
)

type Exchanger interface {
	Exchange(ctx context.Context, query string) (*answer.Result, error)
}

// ExchangerFunc adapts a plain function returning only the reply text.
type ExchangerFunc func(ctx context.Context, query string) (string, error)

func (f ExchangerFunc) Exchange(ctx context.Context, query string) (*answer.Result, error) {
	text, err := f(ctx, query)
	if err != nil {
		return nil, err
	}
	return &answer.Result{Text: text}, nil
}

// Pending is one submitted exchange. Done is closed once the transcript
// entry is settled and the in-flight flag is cleared.
type Pending struct {
	Handle transcript.Handle
	done   chan struct{}
	err    error
}

func (p *Pending) Done() <-chan struct{} { return p.done }

// Err reports the exchange failure, if any. Valid after Done is closed.
func (p *Pending) Err() error {
	<-p.done
	return p.err
}

type Controller struct {
	store    *transcript.Store
	state    *session.State
	ex       Exchanger
	endpoint string

	wg        sync.WaitGroup
	exchanges atomic.Int64
}

func NewController(store *transcript.Store, state *session.State, ex Exchanger, endpoint string) *Controller {
	return &Controller{
		store:    store,
		state:    state,
		ex:       ex,
		endpoint: endpoint,
	}
}

// SubmitDraft submits the current draft query.
func (c *Controller) SubmitDraft(ctx context.Context) (*Pending, error) {
	return c.Submit(ctx, "")
}

// Submit sends source, or the draft when source is empty, to the
// answering service. The transcript is updated optimistically before the
// request is issued; the reply lands asynchronously.
func (c *Controller) Submit(ctx context.Context, source string) (*Pending, error) {
	text := source
	if text == "" {
		text = c.state.Draft()
	}
	if strings.TrimSpace(text) == "" {
		c.state.SetErrorBanner(EmptyQueryBanner)
		return nil, &ValidationError{Reason: "empty query"}
	}

	c.state.SetErrorBanner("")
	c.state.SetDraft("")
	c.state.SetInFlight(true)

	p := &Pending{
		Handle: c.store.BeginExchange(text),
		done:   make(chan struct{}),
	}
	log.ChatLine(string(transcript.User), text)

	c.wg.Add(1)
	go c.run(context.WithoutCancel(ctx), p, text)
	return p, nil
}

func (c *Controller) run(ctx context.Context, p *Pending, text string) {
	defer c.wg.Done()
	defer close(p.done)
	defer c.state.SetInFlight(false)

	res, err := c.ex.Exchange(ctx, text)
	c.exchanges.Add(1)
	logExchange(res, c.endpoint, err)

	if err != nil {
		p.err = err
		log.Errorf("exchange failed: %v", err)
		if serr := c.store.FailExchange(p.Handle, FailureText); serr != nil {
			log.Warnf("fail exchange %s: %v", p.Handle, serr)
		}
		log.ChatLine(string(transcript.Assistant), FailureText)
		return
	}

	reply := Sanitize(res.Text)
	if serr := c.store.ResolveExchange(p.Handle, reply); serr != nil {
		log.Warnf("resolve exchange %s: %v", p.Handle, serr)
	}
	log.ChatLine(string(transcript.Assistant), reply)
}

// Wait blocks until every submitted exchange has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Exchanges returns how many exchanges have completed, successfully or not.
func (c *Controller) Exchanges() int {
	return int(c.exchanges.Load())
}

func logExchange(res *answer.Result, endpoint string, err error) {
	if res == nil {
		var netErr *answer.NetworkError
		if errors.As(err, &netErr) {
			log.Exchange(log.ExchangeMetrics{StatusCode: netErr.StatusCode}, endpoint, true)
		}
		return
	}
	m := log.ExchangeMetrics{
		StatusCode:   res.StatusCode,
		RequestBytes: res.RequestBytes,
		ReplyBytes:   res.ReplyBytes,
	}
	if res.Metrics != nil {
		m.DNSTimeMs = ms(res.Metrics.DNS.Seconds())
		m.TLSTimeMs = ms(res.Metrics.TLS.Seconds())
		m.TTFBMs = ms(res.Metrics.TTFB.Seconds())
		m.TotalTimeMs = ms(res.Metrics.Total.Seconds())
		m.ConnReused = res.Metrics.ConnReused
	}
	log.Exchange(m, endpoint, err != nil)
}

func ms(seconds float64) float64 { return seconds * 1000 }
