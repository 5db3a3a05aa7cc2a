package catapult

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sbertrand101/web-phone/internal/core"
	"github.com/sbertrand101/web-phone/internal/domain"
)

func testClient(srv *httptest.Server) *Client {
	f := &Factory{APIURL: srv.URL, HTTPClient: srv.Client()}
	return f.Client(domain.Credentials{UserID: "u1", APIToken: "tok", APISecret: "sec"})
}

func TestGetAccountAuthAndPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/users/u1/account" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "tok" || pass != "sec" {
			t.Errorf("basic auth not forwarded, got %q/%q", user, pass)
		}
		w.Write([]byte(`{"balance":"538.37","accountType":"pre-pay"}`))
	}))
	defer srv.Close()

	acct, err := testClient(srv).GetAccount(context.Background())
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	balance, _ := acct.Balance.Float64()
	if balance != 538.37 {
		t.Errorf("expected balance 538.37, got %v", balance)
	}
}

func TestCreateApplicationReturnsLocationID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var p ApplicationParams
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if p.Name != "web-phone on example.com" {
			t.Errorf("unexpected name %q", p.Name)
		}
		w.Header().Set("Location", "/v1/users/u1/applications/app-42")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	id, err := testClient(srv).CreateApplication(context.Background(), ApplicationParams{
		Name:               "web-phone on example.com",
		IncomingMessageURL: "http://example.com/u1/message/callback",
		IncomingCallURL:    "http://example.com/u1/call/callback",
	})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	if id != "app-42" {
		t.Errorf("expected id app-42, got %q", id)
	}
}

func TestListMessagesQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("from") != "+15551230000" || q.Get("direction") != "out" || q.Get("size") != "1000" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"id":"m-1","from":"+15551230000","to":"+15557654321","text":"hi","time":"2016-03-01T10:00:00Z"}]`))
	}))
	defer srv.Close()

	msgs, err := testClient(srv).ListMessages(context.Background(), ListMessagesOptions{
		From:      "+15551230000",
		Direction: "out",
		Size:      1000,
	})
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "m-1" {
		t.Errorf("unexpected messages %+v", msgs)
	}
}

func TestCreateCallSendsBridgeAndTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["bridgeId"] != "b-1" || body["tag"] != "c-1" {
			t.Errorf("bridge/tag not forwarded: %+v", body)
		}
		w.Header().Set("Location", "/v1/users/u1/calls/c-2")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	id, err := testClient(srv).CreateCall(context.Background(), core.CallParams{
		From:   "+15551230000",
		To:     "sip:chat-15551230000@dom.example.com",
		Bridge: "b-1",
		Tag:    "c-1",
	})
	if err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	if id != "c-2" {
		t.Errorf("expected id c-2, got %q", id)
	}
}

func TestHangupCallSetsCompletedState(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/users/u1/calls/c-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	if err := testClient(srv).HangupCall(context.Background(), "c-1"); err != nil {
		t.Fatalf("HangupCall: %v", err)
	}
	if got["state"] != "completed" {
		t.Errorf("expected state completed, got %+v", got)
	}
}

func TestAPIErrorCarriesVendorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"category":"forbidden","code":"access-denied","message":"User is not authorized"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv).GetAccount(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "User is not authorized" {
		t.Errorf("unexpected error message %q", err.Error())
	}
}

func TestUploadMediaPutsFileBody(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/v1/users/u1/media/pic.png" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "image/png" {
			t.Errorf("unexpected content type %s", r.Header.Get("Content-Type"))
		}
		buf := make([]byte, 16)
		n, _ := r.Body.Read(buf)
		if string(buf[:n]) != "png-bytes" {
			t.Errorf("unexpected body %q", buf[:n])
		}
	}))
	defer srv.Close()

	if err := testClient(srv).UploadMedia(context.Background(), "pic.png", path, "image/png"); err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}
}

func TestBridgeCallsListsLegs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/users/u1/bridges/b-1/calls" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":"c-1","state":"completed"},{"id":"c-2","state":"active"}]`))
	}))
	defer srv.Close()

	legs, err := testClient(srv).BridgeCalls(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("BridgeCalls: %v", err)
	}
	if len(legs) != 2 || legs[1].ID != "c-2" || legs[1].State != "active" {
		t.Errorf("unexpected legs %+v", legs)
	}
}
