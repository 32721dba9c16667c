package phasetest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-phased-tests/phases"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeT records failures instead of stopping the test, so we can check what Run reports.
type fakeT struct {
	name     string
	errors   []string
	logs     []string
	failedAt int
}

func (f *fakeT) Errorf(format string, args ...interface{}) {
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
}

func (f *fakeT) FailNow() {
	f.failedAt = len(f.errors)
}

func (f *fakeT) Helper() {}

func (f *fakeT) Name() string { return f.name }

func (f *fakeT) Logf(format string, args ...interface{}) {
	f.logs = append(f.logs, fmt.Sprintf(format, args...))
}

func TestRunPassingCase(t *testing.T) {
	ft := &fakeT{name: "TestSomething"}
	Run(ft, phases.Case{
		Given:  func(context.Context) (phases.Record, error) { return phases.Record{"x": 1}, nil },
		Expect: func(context.Context, phases.Record) error { return nil },
	})
	assert.Len(t, ft.errors, 0)
	assert.Equal(t, 0, ft.failedAt)
	assert.Contains(t, ft.logs, "starting expect with {x}")
}

func TestRunFailingCaseUsesTestNameAndFailsNow(t *testing.T) {
	ft := &fakeT{name: "TestSomething"}
	Run(ft, phases.Case{
		Given:  func(context.Context) (phases.Record, error) { return nil, nil },
		Expect: func(context.Context, phases.Record) error { return errors.New("x should be 1") },
	})
	require.Len(t, ft.errors, 1)
	assert.Contains(t, ft.errors[0], "x should be 1")
	assert.Contains(t, ft.errors[0], `case "TestSomething" failed`)
	assert.Equal(t, 1, ft.failedAt)
	assert.Contains(t, ft.logs, "expect failed: x should be 1")
}

func TestRunContextPassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")
	var seen interface{}
	RunContext(ctx, t, phases.Case{
		Given: func(ctx context.Context) (phases.Record, error) {
			seen = ctx.Value(key{})
			return nil, nil
		},
		Expect: func(context.Context, phases.Record) error { return nil },
	})
	assert.Equal(t, "value", seen)
}

func TestServerFixtureIsClosedAfterAssertions(t *testing.T) {
	var closedServer *httptest.Server

	Run(t, phases.Case{
		Given: func(ctx context.Context) (phases.Record, error) {
			handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(204))
			server := httptest.NewServer(handler)
			phases.DebugLogger(ctx).Printf("started server at %s", server.URL)
			return phases.Record{"server": server, "requests": requestsCh}, nil
		},
		Perform: func(_ context.Context, setup phases.Record) (phases.Record, error) {
			server := phases.MustValue[*httptest.Server](setup, "server")
			resp, err := http.Post(server.URL+"/items", "text/plain", nil)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			return phases.Record{"status": resp.StatusCode, "body": string(body)}, nil
		},
		Expect: func(_ context.Context, c phases.Record) error {
			assert.Equal(t, 204, c["status"])
			assert.Equal(t, "", c["body"])
			requestsCh := phases.MustValue[<-chan httphelpers.HTTPRequestInfo](c, "requests")
			require.Len(t, requestsCh, 1)
			request := <-requestsCh
			assert.Equal(t, "POST", request.Request.Method)
			assert.Equal(t, "/items", request.Request.URL.Path)
			return nil
		},
		Teardown: func(_ context.Context, c phases.Record) error {
			closedServer = phases.MustValue[*httptest.Server](c, "server")
			closedServer.Close()
			return nil
		},
	})

	require.NotNil(t, closedServer)
	_, err := http.Get(closedServer.URL)
	assert.Error(t, err, "server should have been closed by Teardown")
}

func TestServerFixtureIsClosedWhenPerformFails(t *testing.T) {
	var closed bool
	ft := &fakeT{name: "TestServer"}

	Run(ft, phases.Case{
		Given: func(context.Context) (phases.Record, error) {
			return phases.Record{"server": httptest.NewServer(httphelpers.HandlerWithStatus(500))}, nil
		},
		Perform: func(_ context.Context, setup phases.Record) (phases.Record, error) {
			server := phases.MustValue[*httptest.Server](setup, "server")
			resp, err := http.Get(server.URL)
			if err != nil {
				return nil, err
			}
			resp.Body.Close()
			if resp.StatusCode != 200 {
				return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
			}
			return phases.Record{"status": resp.StatusCode}, nil
		},
		Expect: func(context.Context, phases.Record) error { return nil },
		Teardown: func(_ context.Context, c phases.Record) error {
			if c.Has("status") {
				return errors.New("teardown should not see a result from a failed Perform")
			}
			phases.MustValue[*httptest.Server](c, "server").Close()
			closed = true
			return nil
		},
	})

	assert.True(t, closed)
	require.Len(t, ft.errors, 1)
	assert.Contains(t, ft.errors[0], "unexpected status 500")
}
