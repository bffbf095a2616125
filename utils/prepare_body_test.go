package utils

import (
	"encoding/json"
	"net/url"
	"testing"
)

func TestPrepareBody_Golden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     map[string]interface{}
		bodyType string
		wantCT   string
		wantErr  bool
		check    func(t *testing.T, buf []byte)
	}{
		{
			name: "nil body no bytes",
			body: nil,
		},
		{
			name:     "json body",
			body:     map[string]interface{}{"email": "a@b.com", "qty": 2},
			bodyType: "application/json",
			wantCT:   "application/json",
			check: func(t *testing.T, buf []byte) {
				var out map[string]any
				if err := json.Unmarshal(buf, &out); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if out["email"] != "a@b.com" {
					t.Fatalf("email=%v", out["email"])
				}
			},
		},
		{
			name:     "empty body type defaults to json",
			body:     map[string]interface{}{"a": 1},
			bodyType: "",
			wantCT:   "application/json",
		},
		{
			name:     "form encoded",
			body:     map[string]interface{}{"page": 2},
			bodyType: "application/x-www-form-urlencoded",
			wantCT:   "application/x-www-form-urlencoded",
			check: func(t *testing.T, buf []byte) {
				vals, err := url.ParseQuery(string(buf))
				if err != nil {
					t.Fatalf("parse query: %v", err)
				}
				if vals.Get("page") != "2" {
					t.Fatalf("page=%q", vals.Get("page"))
				}
			},
		},
		{
			name:     "unsupported type errors",
			body:     map[string]interface{}{"a": 1},
			bodyType: "text/csv",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf, ct, err := PrepareBody(tt.body, tt.bodyType)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if ct != tt.wantCT {
				t.Fatalf("content type=%q want %q", ct, tt.wantCT)
			}
			if tt.check != nil {
				tt.check(t, buf)
			}
		})
	}
}
