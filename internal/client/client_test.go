package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resonatehq/console/internal/metrics"
	"github.com/stretchr/testify/assert"
)

type request struct {
	method string
	path   string
	head   http.Header
	body   []byte
}

func setup(t *testing.T, prefix string, handler func(w http.ResponseWriter, r *http.Request)) (*Http, chan *request) {
	ch := make(chan *request, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}
		ch <- &request{r.Method, r.URL.Path, r.Header, body}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	c, err := New("python", &Config{Url: server.URL + "/", Prefix: prefix, Timeout: 1 * time.Second, ConnTimeout: 1 * time.Second}, metrics.New(prometheus.NewRegistry()))
	assert.Nil(t, err)

	return c, ch
}

func TestGet(t *testing.T) {
	c, ch := setup(t, "api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Active"}]`))
	})

	var out []map[string]any
	assert.Nil(t, c.Get(context.Background(), "/states/", &out))
	assert.Equal(t, []map[string]any{{"id": 1.0, "name": "Active"}}, out)

	req := <-ch
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/api/v1/states/", req.path)
	assert.Equal(t, "application/json", req.head.Get("Accept"))
	assert.Empty(t, req.head.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(req.head.Get("User-Agent"), "console/"))

	_, err := uuid.Parse(req.head.Get("X-Request-Id"))
	assert.Nil(t, err)
}

func TestPost(t *testing.T) {
	c, ch := setup(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"User saved successfully!"}`))
	})

	var out any
	body := map[string]string{"firstName": "John", "lastName": "Doe"}
	assert.Nil(t, c.Post(context.Background(), "/user/", body, &out))
	assert.Equal(t, map[string]any{"message": "User saved successfully!"}, out)

	req := <-ch
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/user/", req.path)
	assert.Equal(t, "application/json", req.head.Get("Content-Type"))
	assert.JSONEq(t, `{"firstName":"John","lastName":"Doe"}`, string(req.body))
}

func TestPostEmptyResponse(t *testing.T) {
	c, _ := setup(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	var out any
	assert.Nil(t, c.Post(context.Background(), "/user/", map[string]string{}, &out))
	assert.Nil(t, out)
}

func TestHealthIgnoresPrefix(t *testing.T) {
	c, ch := setup(t, "/api/v1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	assert.Nil(t, c.Health(context.Background()))
	assert.Equal(t, "/health", (<-ch).path)
}

func TestErrorResponses(t *testing.T) {
	for _, tc := range []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{
			name:    "NoBody",
			status:  http.StatusInternalServerError,
			message: "Request failed with status code 500",
		},
		{
			name:    "FastapiDetail",
			status:  http.StatusBadRequest,
			body:    `{"detail":"State with name 'New' already exists"}`,
			message: "Request failed with status code 400: State with name 'New' already exists",
		},
		{
			name:    "FastapiValidation",
			status:  http.StatusUnprocessableEntity,
			body:    `{"detail":[{"loc":["body","name"],"msg":"field required","type":"value_error.missing"},{"loc":["body"],"msg":"invalid"}]}`,
			message: "Request failed with status code 422: name: field required; invalid",
		},
		{
			name:    "NodeMessage",
			status:  http.StatusUnprocessableEntity,
			body:    `{"message":"firstName is required"}`,
			message: "Request failed with status code 422: firstName is required",
		},
		{
			name:    "NodeError",
			status:  http.StatusNotFound,
			body:    `{"error":"not found"}`,
			message: "Request failed with status code 404: not found",
		},
		{
			name:    "NotJson",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			message: "Request failed with status code 502",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := setup(t, "", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			err := c.Post(context.Background(), "/user/", map[string]string{}, nil)
			assert.ErrorIs(t, err, ErrBackend)

			var backendErr *Error
			assert.True(t, errors.As(err, &backendErr))
			assert.Equal(t, tc.status, backendErr.StatusCode)
			assert.Equal(t, "python", backendErr.Backend)
			assert.Equal(t, tc.message, Message(err))
		})
	}
}

func TestDecodeError(t *testing.T) {
	c, _ := setup(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"users": 1}`))
	})

	var out struct {
		Users []string `json:"users"`
	}
	err := c.Get(context.Background(), "/users/", &out)
	assert.ErrorContains(t, err, "failed to decode python response")

	var typeErr *json.UnmarshalTypeError
	assert.True(t, errors.As(err, &typeErr))
}

func TestUnreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	assert.Nil(t, err)
	addr := l.Addr().String()
	_ = l.Close()

	c, err := New("node", &Config{Url: fmt.Sprintf("http://%s", addr), Timeout: 1 * time.Second, ConnTimeout: 1 * time.Second}, metrics.New(prometheus.NewRegistry()))
	assert.Nil(t, err)

	err = c.Get(context.Background(), "/users/", nil)
	assert.NotNil(t, err)
	assert.Contains(t, Message(err), "Network Error: ")
	assert.NotErrorIs(t, err, ErrBackend)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c, err := New("node", &Config{Url: server.URL, Timeout: 50 * time.Millisecond, ConnTimeout: 1 * time.Second}, metrics.New(prometheus.NewRegistry()))
	assert.Nil(t, err)

	err = c.Get(context.Background(), "/users/", nil)
	assert.Equal(t, "timeout exceeded", Message(err))
}

func TestNewInvalidConfig(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	for _, tc := range []struct {
		url string
		err string
	}{
		{"", "node backend url must be provided"},
		{"localhost:5000", "node backend url must use http or https"},
		{"ftp://localhost", "node backend url must use http or https"},
		{"http://local host", "node backend url is invalid"},
	} {
		_, err := New("node", &Config{Url: tc.url}, m)
		assert.ErrorContains(t, err, tc.err, tc.url)
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "timeout exceeded", Message(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.Equal(t, "request canceled", Message(context.Canceled))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "Request failed with status code 422", Message(fmt.Errorf("save: %w", &Error{StatusCode: 422})))
}
