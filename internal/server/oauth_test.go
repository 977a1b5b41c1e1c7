package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCallbackHandler(t *testing.T) {
	t.Run("relay page forwards the fragment", func(t *testing.T) {
		handler := NewCallbackHandler("state123")
		server := httptest.NewServer(handler)
		defer server.Close()

		resp, err := http.Get(server.URL + "/callback")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}

		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), "window.location.hash") {
			t.Error("expected fragment-forwarding script")
		}
		if !strings.Contains(string(body), "/callback/token?") {
			t.Error("expected forward target")
		}
	})

	t.Run("receives forwarded token", func(t *testing.T) {
		handler := NewCallbackHandler("state123")
		server := httptest.NewServer(handler)
		defer server.Close()

		resp, err := http.Get(server.URL + "/callback/token?access_token=abc&token_type=Bearer&expires_in=3600&state=state123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}

		select {
		case result := <-handler.Result():
			if result.Error() != nil {
				t.Fatalf("unexpected error: %v", result.Error())
			}
			if result.Token.Value != "abc" || result.Token.TokenType != "Bearer" || result.Token.ExpiresIn != 3600 {
				t.Errorf("unexpected token: %+v", result.Token)
			}
		case <-time.After(time.Second):
			t.Fatal("no result delivered")
		}
	})

	t.Run("rejects state mismatch", func(t *testing.T) {
		handler := NewCallbackHandler("state123")
		server := httptest.NewServer(handler)
		defer server.Close()

		resp, err := http.Get(server.URL + "/callback/token?access_token=abc&state=wrong")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected state validation error")
		}
	})

	t.Run("relays provider errors", func(t *testing.T) {
		handler := NewCallbackHandler("state123")
		server := httptest.NewServer(handler)
		defer server.Close()

		resp, err := http.Get(server.URL + "/callback/token?error=access_denied&state=state123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("second callback is rejected", func(t *testing.T) {
		handler := NewCallbackHandler("state123")
		server := httptest.NewServer(handler)
		defer server.Close()

		first, err := http.Get(server.URL + "/callback/token?access_token=abc&state=state123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first.Body.Close()

		second, err := http.Get(server.URL + "/callback/token?access_token=other&state=state123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer second.Body.Close()

		if second.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 for replay, got %d", second.StatusCode)
		}

		result := <-handler.Result()
		if result.Token.Value != "abc" {
			t.Errorf("expected first token to win, got %s", result.Token.Value)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("apply wraps in reverse order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		handler := Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), mw("outer"), mw("inner"))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
			t.Errorf("unexpected middleware order: %v", order)
		}
	})
}
