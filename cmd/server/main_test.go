package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"
)

type stopFunc func()

func (f stopFunc) Stop() { f() }

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, s)
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServe_DrainsRequestsBeforeStoppingQueue(t *testing.T) {
	var log eventLog
	entered := make(chan struct{})
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		log.add("request done")
		w.Write([]byte("ok"))
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	srv := &http.Server{Handler: handler}
	queue := stopFunc(func() { log.add("queue stopped") })

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		err := serve(ctx, srv, ln, queue, discardLogger())
		log.add("serve returned")
		served <- err
	}()

	status := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()

	<-entered
	cancel()

	select {
	case err := <-served:
		t.Fatalf("serve returned before the request finished: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if err := <-served; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code := <-status; code != http.StatusOK {
		t.Errorf("expected in-flight request to complete with 200, got %d", code)
	}

	want := []string{"request done", "queue stopped", "serve returned"}
	got := log.list()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestServe_ListenerFailureStopsQueue(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ln.Close()

	stopped := false
	queue := stopFunc(func() { stopped = true })
	if err := serve(context.Background(), &http.Server{}, ln, queue, discardLogger()); err == nil {
		t.Fatal("expected error from closed listener")
	}
	if !stopped {
		t.Error("expected queue to be stopped")
	}
}
