package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"billtracker/internal/core"
)

func TestParseBillID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "1", want: 1},
		{raw: " 42 ", want: 42},
		{raw: "0", wantErr: true},
		{raw: "-3", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/bills/x", nil)
			req.SetPathValue("id", tt.raw)

			got, err := ParseBillID(req)
			if tt.wantErr {
				if !core.IsValidation(err) {
					t.Fatalf("ParseBillID(%q) error = %v, want validation error", tt.raw, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseBillID(%q) = %d, %v", tt.raw, got, err)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Password string `json:"password"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{name: "valid", body: `{"password":"x"}`, want: "x"},
		{name: "unknown fields ignored", body: `{"password":"x","id":7}`, want: "x"},
		{name: "empty", body: ``, wantErr: "request body is empty"},
		{name: "malformed", body: `{"password":`, wantErr: "invalid JSON"},
		{name: "trailing value", body: `{"password":"x"} {"password":"y"}`, wantErr: "single JSON object"},
		{name: "too large", body: `{"password":"` + strings.Repeat("a", maxJSONBodyBytes) + `"}`, wantErr: "exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got payload
			err := DecodeJSON(httptest.NewRecorder(), req, &got)

			if tt.wantErr != "" {
				var ve *core.ValidationError
				if !errors.As(err, &ve) || !strings.Contains(ve.Message, tt.wantErr) {
					t.Fatalf("DecodeJSON() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeJSON() error = %v", err)
			}
			if got.Password != tt.want {
				t.Errorf("Password = %q, want %q", got.Password, tt.want)
			}
		})
	}
}

func TestHasHeaderAndData(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", false},
		{"bill_number,title\n", false},
		{"bill_number,title\n\n   \n", false},
		{"bill_number,title\nHF 1,Act", true},
		{"\n\nbill_number\n\nHF 1\n", true},
	}
	for _, tt := range tests {
		if got := hasHeaderAndData(tt.text); got != tt.want {
			t.Errorf("hasHeaderAndData(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
