package collect

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"nhooyr.io/websocket"

	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

const (
	feedSendBuffer   = 16
	feedWriteTimeout = 5 * time.Second
	feedMaxPending   = 4096
	feedBacklog      = 8
)

// FeedServer streams published readings to every connected websocket
// client. New clients first receive the last few frames. Slow clients drop
// frames instead of blocking Publish.
type FeedServer struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
	recent  *backlog
	logf    func(string, ...any)
}

func NewFeedServer(logf func(string, ...any)) *FeedServer {
	if logf == nil {
		logf = log.Printf
	}
	return &FeedServer{
		clients: make(map[chan []byte]struct{}),
		recent:  newBacklog(feedBacklog),
		logf:    logf,
	}
}

func (s *FeedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logf("feed: accept: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	ctx := conn.CloseRead(r.Context())
	send := make(chan []byte, feedSendBuffer)
	s.mu.Lock()
	for _, frame := range s.recent.snapshot() {
		send <- frame
	}
	s.clients[send] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, send)
		s.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-send:
			wctx, cancel := context.WithTimeout(ctx, feedWriteTimeout)
			err := conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Publish encodes readings once and queues the frame for each client.
func (s *FeedServer) Publish(readings []Reading) error {
	if len(readings) == 0 {
		return nil
	}
	data, err := EncodeFrame(readings)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent.add(data)
	for ch := range s.clients {
		select {
		case ch <- data:
		default:
			s.logf("feed: client too slow, dropping frame")
		}
	}
	return nil
}

func (s *FeedServer) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// FeedSource subscribes to a FeedServer. Start runs the receive loop with
// exponential reconnect; Collect drains what arrived since the last call.
type FeedSource struct {
	url  string
	logf func(string, ...any)

	mu        sync.Mutex
	pending   []Reading
	connected bool
}

func NewFeedSource(url string, logf func(string, ...any)) *FeedSource {
	if logf == nil {
		logf = log.Printf
	}
	return &FeedSource{url: url, logf: logf}
}

func (f *FeedSource) Name() string { return "feed" }

func (f *FeedSource) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// Start returns immediately; the loop stops when ctx is done.
func (f *FeedSource) Start(ctx context.Context) {
	go f.loop(ctx)
}

func (f *FeedSource) Collect(_ context.Context, now time.Time) ([]Reading, error) {
	f.mu.Lock()
	out := f.pending
	f.pending = nil
	f.mu.Unlock()
	ts := UnixMillis(now)
	for i := range out {
		if out[i].Time == 0 {
			out[i].Time = ts
		}
	}
	return out, nil
}

func (f *FeedSource) loop(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	for {
		err := f.receive(ctx, bo)
		if ctx.Err() != nil {
			return
		}
		wait := bo.NextBackOff()
		f.logf("feed: %v; reconnecting in %s", err, wait.Round(time.Millisecond))
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (f *FeedSource) receive(ctx context.Context, bo *backoff.ExponentialBackOff) error {
	conn, _, err := websocket.Dial(ctx, f.url, nil)
	if err != nil {
		return errdef.Wrap(errdef.CodeFeed, err, "dial %s", f.url)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	bo.Reset()
	f.setConnected(true)
	defer f.setConnected(false)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return errdef.Wrap(errdef.CodeFeed, err, "read")
		}
		readings, err := DecodeFrame(data)
		if err != nil {
			_ = errdef.Soft(f.logf, err)
			continue
		}
		f.mu.Lock()
		f.pending = append(f.pending, readings...)
		if over := len(f.pending) - feedMaxPending; over > 0 {
			f.pending = append(f.pending[:0], f.pending[over:]...)
		}
		f.mu.Unlock()
	}
}

func (f *FeedSource) setConnected(v bool) {
	f.mu.Lock()
	f.connected = v
	f.mu.Unlock()
}
