package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient("TOKEN")
	c.SetBaseURL(srv.URL)
	return c, srv
}

func TestGetMe(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/getMe" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"ok":true,"result":{"id":99,"is_bot":true,"first_name":"fetchdl","username":"fetchdl_bot"}}`)
	})
	defer srv.Close()

	me, err := c.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe failed: %v", err)
	}
	if me.ID != 99 || me.Username != "fetchdl_bot" || !me.IsBot {
		t.Errorf("me = %+v", me)
	}
}

func TestGetUpdates(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("offset"); got != "5" {
			t.Errorf("offset = %q, want 5", got)
		}
		if got := r.PostForm.Get("timeout"); got != "30" {
			t.Errorf("timeout = %q, want 30", got)
		}
		if got := r.PostForm.Get("allowed_updates"); !strings.Contains(got, "callback_query") {
			t.Errorf("allowed_updates = %q", got)
		}
		fmt.Fprint(w, `{"ok":true,"result":[
			{"update_id":6,"message":{"message_id":1,"chat":{"id":42,"type":"private"},"text":"hi"}},
			{"update_id":7,"callback_query":{"id":"cb","from":{"id":42},"data":"download_audio:x"}}
		]}`)
	})
	defer srv.Close()

	updates, err := c.GetUpdates(context.Background(), 5, 30)
	if err != nil {
		t.Fatalf("GetUpdates failed: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("updates = %d, want 2", len(updates))
	}
	if updates[0].Message == nil || updates[0].Message.Text != "hi" {
		t.Errorf("first update = %+v", updates[0])
	}
	if updates[1].CallbackQuery == nil || updates[1].CallbackQuery.Data != "download_audio:x" {
		t.Errorf("second update = %+v", updates[1])
	}
}

func TestSendMessage(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("chat_id"); got != "42" {
			t.Errorf("chat_id = %q", got)
		}
		if got := r.PostForm.Get("text"); got != "hello" {
			t.Errorf("text = %q", got)
		}
		if got := r.PostForm.Get("reply_to_message_id"); got != "7" {
			t.Errorf("reply_to_message_id = %q", got)
		}
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":11,"chat":{"id":42,"type":"private"}}}`)
	})
	defer srv.Close()

	msg, err := c.SendMessage(context.Background(), "42", "hello", &SendOptions{ReplyTo: 7})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.MessageID != 11 {
		t.Errorf("MessageID = %d, want 11", msg.MessageID)
	}
}

func TestSendMessage_NilOptions(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Has("reply_to_message_id") {
			t.Error("reply_to_message_id must be absent")
		}
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"chat":{"id":42,"type":"private"}}}`)
	})
	defer srv.Close()

	if _, err := c.SendMessage(context.Background(), "42", "hello", nil); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
}

func TestSendVideo_MultipartFields(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendVideo" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("chat_id"); got != "42" {
			t.Errorf("chat_id = %q", got)
		}
		if got := r.FormValue("caption"); got != "a caption" {
			t.Errorf("caption = %q", got)
		}
		if got := r.FormValue("parse_mode"); got != "HTML" {
			t.Errorf("parse_mode = %q", got)
		}
		if got := r.FormValue("reply_to_message_id"); got != "7" {
			t.Errorf("reply_to_message_id = %q", got)
		}
		if got := r.FormValue("reply_markup"); !strings.Contains(got, "download_audio:res-1") {
			t.Errorf("reply_markup = %q", got)
		}

		file, header, err := r.FormFile("video")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "clip.mp4" {
			t.Errorf("filename = %q", header.Filename)
		}

		fmt.Fprint(w, `{"ok":true,"result":{"message_id":12,"chat":{"id":42,"type":"private"}}}`)
	})
	defer srv.Close()

	opts := &MediaOptions{
		Caption: "a caption",
		ReplyTo: 7,
		Markup:  SingleButton("🔊 Audio Only", "download_audio:res-1"),
	}
	msg, err := c.SendVideo(context.Background(), "42", []byte("videobytes"), "clip.mp4", opts)
	if err != nil {
		t.Fatalf("SendVideo failed: %v", err)
	}
	if msg.MessageID != 12 {
		t.Errorf("MessageID = %d, want 12", msg.MessageID)
	}
}

func TestSendAudio_UsesAudioField(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("audio"); err != nil {
			t.Errorf("audio field missing: %v", err)
		}
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":13,"chat":{"id":42,"type":"private"}}}`)
	})
	defer srv.Close()

	if _, err := c.SendAudio(context.Background(), "42", []byte("mp3"), "track.mp3", nil); err != nil {
		t.Fatalf("SendAudio failed: %v", err)
	}
}

func TestAPIError(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`)
	})
	defer srv.Close()

	_, err := c.SendMessage(context.Background(), "42", "hello", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != 403 {
		t.Errorf("Code = %d, want 403", apiErr.Code)
	}
	if !strings.Contains(apiErr.Error(), "Forbidden") {
		t.Errorf("Error() = %q", apiErr.Error())
	}
}

func TestDeleteMessage(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("message_id"); got != "11" {
			t.Errorf("message_id = %q", got)
		}
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	})
	defer srv.Close()

	if err := c.DeleteMessage(context.Background(), "42", 11); err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}
}

func TestAnswerCallbackQuery(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("callback_query_id"); got != "cb-1" {
			t.Errorf("callback_query_id = %q", got)
		}
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	})
	defer srv.Close()

	if err := c.AnswerCallbackQuery(context.Background(), "cb-1"); err != nil {
		t.Fatalf("AnswerCallbackQuery failed: %v", err)
	}
}
