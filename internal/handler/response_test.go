package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coursereg/coursereg-go/internal/model"
)

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        model.EnrollRequest
		wantErr     bool
	}{
		{name: "json", contentType: "application/json", body: `{"courseId":"c1"}`, want: model.EnrollRequest{CourseID: "c1"}},
		{name: "json with charset", contentType: "application/json; charset=utf-8", body: `{"courseId":"c2"}`, want: model.EnrollRequest{CourseID: "c2"}},
		{name: "form", contentType: "application/x-www-form-urlencoded", body: "courseId=c3", want: model.EnrollRequest{CourseID: "c3"}},
		{name: "empty body", contentType: "application/json", body: ""},
		{name: "malformed json", contentType: "application/json", body: `{"courseId":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/courses/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			var got model.EnrollRequest
			err := decodeBody(httptest.NewRecorder(), req, &got)
			if tt.wantErr {
				if err == nil {
					t.Fatal("decodeBody() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeBody() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("decodeBody() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeBodyTooLarge(t *testing.T) {
	body := `{"courseId":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	var dst model.EnrollRequest
	err := decodeBody(rec, req, &dst)
	if err != errBodyTooLarge {
		t.Fatalf("decodeBody() error = %v, want %v", err, errBodyTooLarge)
	}

	writeDecodeError(rec, err)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestWriteDecodeErrorBadRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDecodeError(rec, errUnexpected)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := rec.Body.String(); got != `{"error":"invalid request body"}`+"\n" {
		t.Errorf("body = %q", got)
	}
}
