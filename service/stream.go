package service

import (
	"context"
	"sync"
	"sync/atomic"
)

// TokenStream is one streaming session, prepared by Service.Stream and
// explicitly started. Tokens are forwarded in emission order; exactly one
// of the completion or error callbacks fires, never both. The stream can
// be cancelled, which surfaces as an error callback.
type TokenStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	sess   *session

	onNext     func(token string)
	onComplete func(result *Result)
	onError    func(err error)

	started  atomic.Bool
	terminal sync.Once
	done     chan struct{}
}

func newTokenStream(ctx context.Context, sess *session) *TokenStream {
	streamCtx, cancel := context.WithCancel(ctx)
	return &TokenStream{
		ctx:    streamCtx,
		cancel: cancel,
		sess:   sess,
		done:   make(chan struct{}),
	}
}

// OnNext sets the token handler. Must be called before Start.
func (t *TokenStream) OnNext(fn func(token string)) *TokenStream {
	t.onNext = fn
	return t
}

// OnComplete sets the completion handler. Must be called before Start.
func (t *TokenStream) OnComplete(fn func(result *Result)) *TokenStream {
	t.onComplete = fn
	return t
}

// OnError sets the error handler. Must be called before Start.
func (t *TokenStream) OnError(fn func(err error)) *TokenStream {
	t.onError = fn
	return t
}

// Start launches the session. It returns immediately; callbacks are
// delivered from the stream's own goroutine. Starting twice is an error.
func (t *TokenStream) Start() error {
	if !t.started.CompareAndSwap(false, true) {
		return ErrStreamStarted
	}
	go t.run()
	return nil
}

// Cancel abandons the session. In-flight model and tool calls are not
// forcibly aborted beyond context cancellation; the error callback fires
// once the session observes it.
func (t *TokenStream) Cancel() {
	t.cancel()
}

// Done is closed after the terminal callback has returned.
func (t *TokenStream) Done() <-chan struct{} {
	return t.done
}

func (t *TokenStream) run() {
	defer close(t.done)
	defer t.cancel()

	result, err := t.sess.run(t.ctx, t.emit)
	t.terminal.Do(func() {
		if err != nil {
			if t.onError != nil {
				t.onError(err)
			}
			return
		}
		if t.onComplete != nil {
			t.onComplete(result)
		}
	})
}

func (t *TokenStream) emit(token string) {
	if t.onNext != nil {
		t.onNext(token)
	}
}
