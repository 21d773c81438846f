package chat

import (
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu      sync.Mutex
	authors []string
}

func (r *recordingSink) BroadcastChat(author, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authors = append(r.authors, author)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.authors)
}

func TestServerFansOutToEveryRegisteredSink(t *testing.T) {
	s := NewServer()
	a := &recordingSink{}
	b := &recordingSink{}
	s.Register("alpha", a)
	s.Register("beta", b)

	go s.Run()
	s.Inbox() <- Message{Author: "pilot", Content: "hello"}

	deadline := time.After(time.Second)
	for a.count() == 0 || b.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for fanout to both sinks")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestServerRunsWithNoRegisteredSinks(t *testing.T) {
	s := NewServer()
	// no sinks registered: Run must not block or panic on an empty fanout.
	go s.Run()
	s.Inbox() <- Message{Author: "nobody", Content: "hi"}
	time.Sleep(10 * time.Millisecond)
}
