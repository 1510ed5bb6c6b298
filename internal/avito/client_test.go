package avito

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	errs "github.com/edgard/avitobridge/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, Token: "secret", UserID: "42"}, srv.Client(), nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestChatIDUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want ChatID
	}{
		{`"u2i-abc"`, "u2i-abc"},
		{`123`, "123"},
		{`null`, ""},
		{`""`, ""},
		{`0`, ""},
	}
	for _, tt := range tests {
		var got ChatID
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Errorf("Unmarshal(%s) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}

	var bad ChatID
	if err := json.Unmarshal([]byte(`true`), &bad); err == nil {
		t.Error("expected error for boolean id")
	}
}

func TestListChatIDs(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messenger/v2/accounts/42/chats" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q, want 5", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		_, _ = w.Write([]byte(`{"chats":[{"id":1},{"title":"no id"},{"id":"u2i-x"},{"id":null}]}`))
	})

	ids, err := c.ListChatIDs(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListChatIDs() error = %v", err)
	}
	if want := []ChatID{"1", "u2i-x"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ListChatIDs() = %v, want %v", ids, want)
	}
}

func TestListChatIDs_MissingChats(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ids, err := c.ListChatIDs(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListChatIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}

func TestGetChat(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messenger/v2/accounts/42/chats/7" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte("{\n  \"id\": \"7\",\n  \"users\": []\n}"))
	})

	detail, err := c.GetChat(context.Background(), "7")
	if err != nil {
		t.Fatalf("GetChat() error = %v", err)
	}
	if got, want := detail.String(), `{"id":"7","users":[]}`; got != want {
		t.Errorf("detail = %s, want %s", got, want)
	}
}

func TestListMessages(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messenger/v3/accounts/42/chats/7/messages/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "15" {
			t.Errorf("limit = %q, want 15", got)
		}
		_, _ = w.Write([]byte(`{"messages":[
			{"type":"text","content":{"text":"hello"},"direction":"in"},
			{"type":"image","content":{"image":{}},"direction":"out"},
			{"type":"text","direction":"out"}
		]}`))
	})

	msgs, err := c.ListMessages(context.Background(), "7", 15)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Text() != "hello" || msgs[0].Direction != DirectionIn || msgs[0].Type != TypeText {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[2].Text() != "" {
		t.Errorf("missing content should give empty text, got %q", msgs[2].Text())
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	t.Run("non-2xx", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		})
		_, err := c.ListChatIDs(context.Background(), 5)
		var apiErr *errs.APIError
		if !errs.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.StatusCode != http.StatusForbidden || apiErr.Endpoint != EndpointListChats {
			t.Errorf("unexpected error fields: %+v", apiErr)
		}
	})

	t.Run("bad json", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"messages":`))
		})
		_, err := c.ListMessages(context.Background(), "1", 15)
		if errs.Code(err) != errs.CodeDecode {
			t.Errorf("Code() = %q, want %q (err %v)", errs.Code(err), errs.CodeDecode, err)
		}
	})

	t.Run("transport", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := NewClient(Config{BaseURL: url, Token: "t", UserID: "1"}, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		_, err = c.GetChat(context.Background(), "1")
		var apiErr *errs.APIError
		if !errs.As(err, &apiErr) || apiErr.StatusCode != 0 {
			t.Fatalf("expected transport APIError, got %v", err)
		}
	})
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{BaseURL: "http://x", UserID: "1"}, nil, nil); err == nil {
		t.Error("expected error without token")
	}
	if _, err := NewClient(Config{BaseURL: "http://x", Token: "t"}, nil, nil); err == nil {
		t.Error("expected error without user id")
	}
	if _, err := NewClient(Config{Token: "t", UserID: "1"}, nil, nil); err == nil {
		t.Error("expected error without base url")
	}
}
