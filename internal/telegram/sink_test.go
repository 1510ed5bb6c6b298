package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	errs "github.com/edgard/avitobridge/internal/errors"
	"github.com/edgard/avitobridge/internal/logger"
)

type recordingSender struct {
	params []*bot.SendMessageParams
	failAt int // 1-based call index that fails; 0 never fails
}

func (r *recordingSender) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	r.params = append(r.params, p)
	if r.failAt == len(r.params) {
		return nil, errors.New("bad request")
	}
	return &models.Message{ID: len(r.params)}, nil
}

func TestNewSinkChannelID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want any
	}{
		{"-1002465274869", int64(-1002465274869)},
		{"@my_channel", "@my_channel"},
		{" 42 ", int64(42)},
	}
	for _, tt := range tests {
		s, err := NewSink(&recordingSender{}, tt.in, logger.Discard())
		if err != nil {
			t.Fatalf("NewSink(%q) error = %v", tt.in, err)
		}
		if s.channelID != tt.want {
			t.Errorf("NewSink(%q) channelID = %#v, want %#v", tt.in, s.channelID, tt.want)
		}
	}

	if _, err := NewSink(&recordingSender{}, "  ", nil); err == nil {
		t.Error("expected error for empty channel id")
	}
}

func TestSinkSend(t *testing.T) {
	t.Parallel()

	rec := &recordingSender{}
	s, _ := NewSink(rec, "-100", logger.Discard())

	if err := s.Send(context.Background(), "Last 1 messages for chat ID 1:\n\nhello [in]\n"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(rec.params) != 1 {
		t.Fatalf("sent %d messages, want 1", len(rec.params))
	}
	if rec.params[0].ChatID != int64(-100) || !strings.HasSuffix(rec.params[0].Text, "hello [in]\n") {
		t.Errorf("params = %+v", rec.params[0])
	}
}

func TestSinkSendSplitsAndStopsOnError(t *testing.T) {
	t.Parallel()

	line := strings.Repeat("a", 3000) + "\n"
	text := line + line + line

	rec := &recordingSender{failAt: 2}
	s, _ := NewSink(rec, "@chan", logger.Discard())

	err := s.Send(context.Background(), text)
	if errs.Code(err) != errs.CodeSink {
		t.Fatalf("expected sink error, got %v", err)
	}
	if len(rec.params) != 2 {
		t.Errorf("expected sending to stop at the failing part, got %d calls", len(rec.params))
	}
}

func TestSplitText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{name: "fits", text: "a\nb\n", limit: 10, want: []string{"a\nb\n"}},
		{name: "line boundaries", text: "aaa\nbbb\nccc\n", limit: 8, want: []string{"aaa\nbbb\n", "ccc\n"}},
		{name: "long line", text: "abcdefghij", limit: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "runes", text: "привет\nмир\n", limit: 7, want: []string{"привет\n", "мир\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SplitText(tt.text, tt.limit)
			if strings.Join(got, "") != tt.text {
				t.Errorf("parts do not reassemble the input: %q", got)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SplitText() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("part %d = %q, want %q", i, got[i], tt.want[i])
				}
				if utf8.RuneCountInString(got[i]) > tt.limit {
					t.Errorf("part %d exceeds limit", i)
				}
			}
		})
	}
}

func TestSinkWithBotAPI(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotChatID, gotText string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		mu.Lock()
		gotChatID = r.FormValue("chat_id")
		gotText = r.FormValue("text")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":10,"date":0,"chat":{"id":-1001,"type":"channel"},"text":"ok"}}`))
	}))
	defer srv.Close()

	b, err := NewTelegramBot("123:abc", logger.Discard(), bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	if err != nil {
		t.Fatalf("NewTelegramBot() error = %v", err)
	}
	s, err := NewSink(b, "-1001", logger.Discard())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Send(context.Background(), "Last 1 messages for chat ID 1:\n\nhello [in]\n"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotChatID != "-1001" {
		t.Errorf("chat_id = %q", gotChatID)
	}
	if !strings.Contains(gotText, "hello [in]") {
		t.Errorf("text = %q", gotText)
	}
}

func TestNewTelegramBotEmptyToken(t *testing.T) {
	t.Parallel()

	if _, err := NewTelegramBot("", nil); err == nil {
		t.Fatal("expected error for empty token")
	}
}
