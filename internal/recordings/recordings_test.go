package recordings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"callcenter-platform/internal/config"
	"callcenter-platform/internal/validation"
)

func validReq() UploadRequest {
	return UploadRequest{
		Filename:    "call.mp3",
		ContentType: "audio/mpeg",
		SizeBytes:   1024,
		Body:        strings.NewReader("audio-bytes"),
	}
}

func TestValidate_Accepts(t *testing.T) {
	for _, name := range []string{"a.mp3", "b.WAV", "c.ogg", "d.webm", "e.m4a", "f.aac"} {
		req := validReq()
		req.Filename = name
		req.ContentType = ""
		if err := Validate(req); err != nil {
			t.Fatalf("expected %q accepted, got %v", name, err)
		}
	}
	// MIME parameters are ignored.
	req := validReq()
	req.Filename = "clip.webm"
	req.ContentType = "audio/webm; codecs=opus"
	if err := Validate(req); err != nil {
		t.Fatalf("expected parameterized mime accepted, got %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*UploadRequest)
		field string
	}{
		{"wrong extension", func(r *UploadRequest) { r.Filename = "notes.pdf" }, "filename"},
		{"no extension", func(r *UploadRequest) { r.Filename = "call" }, "filename"},
		{"empty filename", func(r *UploadRequest) { r.Filename = "" }, "filename"},
		{"non-audio mime", func(r *UploadRequest) { r.ContentType = "application/pdf" }, "contentType"},
		{"too large", func(r *UploadRequest) { r.SizeBytes = MaxUploadBytes + 1 }, "size"},
		{"empty file", func(r *UploadRequest) { r.SizeBytes = 0 }, "size"},
	}
	for _, tc := range cases {
		req := validReq()
		tc.mut(&req)
		err := Validate(req)
		v, ok := validation.AsError(err)
		if !ok {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		found := false
		for _, f := range v.Fields {
			if f == tc.field {
				found = true
			}
		}
		if !found {
			t.Fatalf("%s: expected %q flagged, got %v", tc.name, tc.field, v.Fields)
		}
	}
}

func TestValidate_ExactLimit(t *testing.T) {
	req := validReq()
	req.SizeBytes = MaxUploadBytes
	if err := Validate(req); err != nil {
		t.Fatalf("expected exactly 50 MiB accepted, got %v", err)
	}
}

func TestHTTPStore_Upload(t *testing.T) {
	var gotPreset, gotFolder, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotPreset = r.FormValue("upload_preset")
		gotFolder = r.FormValue("folder")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		gotFilename = hdr.Filename
		var buf bytes.Buffer
		buf.ReadFrom(f)
		if buf.String() != "audio-bytes" {
			t.Fatalf("unexpected payload %q", buf.String())
		}
		json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://media.example/v1/call.mp3",
			"public_id":  "call-recordings/abc123",
		})
	}))
	defer srv.Close()

	store := NewHTTPStore(config.MediaConfig{
		UploadURL:    srv.URL,
		UploadPreset: "unsigned-preset",
		Folder:       "call-recordings",
	})
	res, err := store.Upload(context.Background(), validReq())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.URL != "https://media.example/v1/call.mp3" || res.PublicID != "call-recordings/abc123" {
		t.Fatalf("unexpected result %+v", res)
	}
	if gotPreset != "unsigned-preset" || gotFolder != "call-recordings" || gotFilename != "call.mp3" {
		t.Fatalf("request fields not forwarded: preset=%q folder=%q filename=%q", gotPreset, gotFolder, gotFilename)
	}
}

func TestHTTPStore_ProviderErrorsAreStorageErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewHTTPStore(config.MediaConfig{UploadURL: srv.URL})
	_, err := store.Upload(context.Background(), validReq())
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestHTTPStore_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"secure_url": ""}`))
	}))
	defer srv.Close()

	store := NewHTTPStore(config.MediaConfig{UploadURL: srv.URL})
	_, err := store.Upload(context.Background(), validReq())
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	res, err := store.Upload(context.Background(), validReq())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	data, ok := store.Stored(res.PublicID)
	if !ok || string(data) != "audio-bytes" {
		t.Fatalf("expected payload retained, got %q ok=%v", data, ok)
	}

	store.Fail = true
	if _, err := store.Upload(context.Background(), validReq()); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage on simulated outage, got %v", err)
	}
}
