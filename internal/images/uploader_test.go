package images

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestUpload_Success(t *testing.T) {
	var gotAuth string
	var gotField string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(MaxImageSize); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("image"); err == nil {
			gotField = "image"
		}
		w.Write([]byte(`{"success":true,"data":{"link":"https://i.example.com/abc.jpg"}}`))
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, "client-123", zap.NewNop())
	link, err := u.Upload(context.Background(), "kottu.jpg", "image/jpeg", []byte("fake-jpeg"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if link != "https://i.example.com/abc.jpg" {
		t.Fatalf("link = %q", link)
	}
	if gotAuth != "Client-ID client-123" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotField != "image" {
		t.Fatal("image form field missing")
	}
}

func TestUpload_RejectsNonImageLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached the server")
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, "client-123", zap.NewNop())
	_, err := u.Upload(context.Background(), "notes.pdf", "application/pdf", []byte("x"))

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("err = %v, want UploadError", err)
	}
	if uploadErr.Message != "Please select an image file" {
		t.Fatalf("message = %q", uploadErr.Message)
	}
}

func TestUpload_RejectsOversizedLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached the server")
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, "client-123", zap.NewNop())
	_, err := u.Upload(context.Background(), "huge.png", "image/png", make([]byte, MaxImageSize+1))

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("err = %v, want UploadError", err)
	}
	if uploadErr.Message != "Image must be smaller than 5MB" {
		t.Fatalf("message = %q", uploadErr.Message)
	}
}

func TestUpload_HostFailureIsPresentable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, "client-123", zap.NewNop())
	_, err := u.Upload(context.Background(), "kottu.jpg", "image/jpeg", []byte("fake"))

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("err = %v, want UploadError", err)
	}
}

func TestUpload_UnsuccessfulBodyIsPresentable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"data":{}}`))
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, "client-123", zap.NewNop())
	_, err := u.Upload(context.Background(), "kottu.jpg", "image/jpeg", []byte("fake"))

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("err = %v, want UploadError", err)
	}
}
