package domain

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewSuccess_EmptyBodyIsTrue(t *testing.T) {
	if got := string(NewSuccess(nil).Body); got != "true" {
		t.Errorf("empty body = %q, want true", got)
	}
	if got := string(NewSuccess([]byte(`{"x":1}`)).Body); got != `{"x":1}` {
		t.Errorf("body = %q", got)
	}
}

func TestNewSuccess_EmptyBodiesAreIndependent(t *testing.T) {
	a := NewSuccess(nil)
	a.Body[0] = 'X'

	if got := string(NewSuccess(nil).Body); got != "true" {
		t.Errorf("empty body after mutating another = %q, want true", got)
	}
	if got := string(NewSuccess([]byte{}).Body); got != "true" {
		t.Errorf("zero-length body = %q, want true", got)
	}
}

func TestSuccess_Decode(t *testing.T) {
	var v struct{ X int }
	if err := NewSuccess([]byte(`{"x":1}`)).Decode(&v); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.X != 1 {
		t.Errorf("X = %d, want 1", v.X)
	}

	var b bool
	if err := NewSuccess(nil).Decode(&b); err != nil || !b {
		t.Errorf("empty body decoded to %v, %v", b, err)
	}
}

func TestFailure_Is(t *testing.T) {
	kinds := map[FailureKind]error{
		FailureTransport:      ErrTransportFailure,
		FailureHTTP:           ErrHTTPFailure,
		FailureGateTimeout:    ErrGateTimeout,
		FailureCanceled:       ErrRequestCanceled,
		FailureStopped:        ErrDispatcherStopped,
		FailureInvalidRequest: ErrInvalidRequest,
	}

	for kind, sentinel := range kinds {
		f := &Failure{Kind: kind}
		if !errors.Is(f, sentinel) {
			t.Errorf("%s failure does not match its sentinel", kind)
		}
		for other, s := range kinds {
			if other != kind && errors.Is(f, s) {
				t.Errorf("%s failure matches %v", kind, s)
			}
		}
	}
}

func TestFailure_UnwrapAndMessage(t *testing.T) {
	req, _ := NewRequest(MethodGet, "http://api.test/x", nil, nil, 1)
	f := NewFailure(FailureTransport, req, io.ErrUnexpectedEOF)

	if !errors.Is(f, io.ErrUnexpectedEOF) {
		t.Error("cause not reachable through Unwrap")
	}
	if msg := f.Error(); !strings.Contains(msg, "GET http://api.test/x") || !strings.Contains(msg, "unexpected EOF") {
		t.Errorf("Error() = %q", msg)
	}

	h := &Failure{Kind: FailureHTTP, Method: MethodPost, URL: "http://x", Status: 404, Body: []byte("nope")}
	if msg := h.Error(); !strings.Contains(msg, "404") || !strings.Contains(msg, "nope") {
		t.Errorf("Error() = %q", msg)
	}

	got, ok := AsFailure(errors.Join(errors.New("other"), h))
	if !ok || got != h {
		t.Error("AsFailure did not find the wrapped failure")
	}
}

func TestResult(t *testing.T) {
	body, err := Result(NewSuccess([]byte("ok")))
	if err != nil || string(body) != "ok" {
		t.Errorf("Result(success) = %q, %v", body, err)
	}

	f := &Failure{Kind: FailureHTTP, Status: 500}
	if _, err := Result(f); !errors.Is(err, ErrHTTPFailure) {
		t.Errorf("Result(failure) err = %v", err)
	}

	if _, err := Result(nil); !errors.Is(err, ErrTransportFailure) {
		t.Errorf("Result(nil) err = %v", err)
	}
}

func TestFuture_ResolvesOnce(t *testing.T) {
	fut := NewFuture()
	if _, done := fut.Outcome(); done {
		t.Fatal("new future is resolved")
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if fut.Resolve(NewSuccess(nil)) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("Resolve succeeded %d times, want 1", wins)
	}
	if fut.Resolve(&Failure{Kind: FailureHTTP}) {
		t.Error("late Resolve overwrote the outcome")
	}
	if _, ok := mustOutcome(t, fut).(Success); !ok {
		t.Error("outcome is not the first resolution")
	}
}

func TestFuture_WaitHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := NewFuture().Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait err = %v, want DeadlineExceeded", err)
	}
}

func TestFuture_Result(t *testing.T) {
	fut := NewFuture()
	fut.Resolve(&Failure{Kind: FailureGateTimeout})

	_, err := fut.Result(context.Background())
	if !errors.Is(err, ErrGateTimeout) {
		t.Errorf("Result err = %v", err)
	}
}

func mustOutcome(t *testing.T, fut *Future) Outcome {
	t.Helper()
	o, done := fut.Outcome()
	if !done {
		t.Fatal("future not resolved")
	}
	return o
}
