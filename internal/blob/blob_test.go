package blob_test

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/garnizeh/studybuddy/internal/blob"
)

func TestNewKey(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	k1 := blob.NewKey(ts, ".PNG")
	k2 := blob.NewKey(ts, "png")
	if !strings.HasPrefix(k1, "1700000000123-") || !strings.HasSuffix(k1, ".png") {
		t.Fatalf("unexpected key %q", k1)
	}
	if k1 == k2 {
		t.Fatalf("expected distinct keys for the same millisecond")
	}
	if got := blob.NewKey(ts, ""); !strings.HasSuffix(got, ".jpg") {
		t.Fatalf("expected jpg default, got %q", got)
	}
	if !blob.ValidKey(k1) {
		t.Fatalf("generated key should be valid")
	}
}

func TestValidKey(t *testing.T) {
	cases := map[string]bool{
		"a.jpg":         true,
		"":              false,
		"../etc/passwd": false,
		"a/b.jpg":       false,
		`a\b.jpg`:       false,
	}
	for key, want := range cases {
		if got := blob.ValidKey(key); got != want {
			t.Fatalf("ValidKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	store, err := blob.NewLocal(dir, "http://localhost:8080/images/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	url, err := store.Put(context.Background(), "k.jpg", "image/jpeg", []byte("data"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "http://localhost:8080/images/k.jpg" {
		t.Fatalf("unexpected url %q", url)
	}

	p, err := store.Path("k.jpg")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "data" {
		t.Fatalf("expected stored bytes, got %q, %v", b, err)
	}

	if _, err := store.Put(context.Background(), "../x", "image/jpeg", nil); err == nil {
		t.Fatalf("expected error for traversal key")
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Put(t *testing.T) {
	fake := &fakeS3{}
	store := blob.NewS3WithClient(fake, "bucket", "profile-images", "https://cdn.example.com")

	url, err := store.Put(context.Background(), "k.jpg", "image/jpeg", []byte("abc"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "https://cdn.example.com/profile-images/k.jpg" {
		t.Fatalf("unexpected url %q", url)
	}
	if *fake.input.Bucket != "bucket" || *fake.input.Key != "profile-images/k.jpg" || *fake.input.ContentType != "image/jpeg" {
		t.Fatalf("unexpected input %#v", fake.input)
	}
	if string(fake.body) != "abc" {
		t.Fatalf("unexpected body %q", fake.body)
	}

	fake.err = errors.New("access denied")
	if _, err := store.Put(context.Background(), "k.jpg", "image/jpeg", nil); err == nil {
		t.Fatalf("expected put error")
	}
}
