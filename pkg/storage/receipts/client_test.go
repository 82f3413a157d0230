package receipts

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func staticTokenSource() *tokenSource {
	return &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		return "token", time.Now().Add(time.Hour), nil
	}}
}

func TestDeleteSuccess(t *testing.T) {
	t.Parallel()

	client := &Client{
		bucket:      "receipts-test",
		tokenSource: staticTokenSource(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			if req.Method != http.MethodDelete {
				t.Fatalf("expected DELETE, got %s", req.Method)
			}
			if req.Header.Get("Authorization") != "Bearer token" {
				t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
			}
			if !strings.Contains(req.URL.Path, "receipts-test") {
				t.Fatalf("unexpected path %s", req.URL.Path)
			}
			return &http.Response{
				StatusCode: http.StatusNoContent,
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     http.Header{},
			}
		})},
	}

	if err := client.Delete(context.Background(), "expenses/receipt-1.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestDeleteTreatsNotFoundAsSuccess(t *testing.T) {
	t.Parallel()

	client := &Client{
		bucket:      "receipts-test",
		tokenSource: staticTokenSource(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     http.Header{},
			}
		})},
	}

	if err := client.Delete(context.Background(), "expenses/gone.jpg"); err != nil {
		t.Fatalf("Delete of a missing object should succeed: %v", err)
	}
}

func TestDeleteSurfacesServerErrors(t *testing.T) {
	t.Parallel()

	client := &Client{
		bucket:      "receipts-test",
		tokenSource: staticTokenSource(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusForbidden,
				Body:       io.NopCloser(strings.NewReader("denied")),
				Header:     http.Header{},
			}
		})},
	}

	if err := client.Delete(context.Background(), "expenses/receipt-1.jpg"); err == nil {
		t.Fatal("expected error for forbidden delete")
	}
}

func TestDeleteRequiresFileName(t *testing.T) {
	client := &Client{bucket: "b", tokenSource: staticTokenSource(), httpClient: http.DefaultClient}
	if err := client.Delete(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty file name")
	}
}

func TestObjectURL(t *testing.T) {
	client := &Client{bucket: "receipts-test"}
	got := client.ObjectURL("expenses/receipt 1.jpg")
	want := "https://storage.googleapis.com/receipts-test/expenses%2Freceipt%201.jpg"
	if got != want {
		t.Fatalf("unexpected url %q, want %q", got, want)
	}
	if (&Client{}).ObjectURL("") != "" {
		t.Fatal("empty file name should yield empty url")
	}
}
