package capture

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestCapturePagePNGValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{"missing url", Options{OutputPath: "/tmp/x.png"}, "URL is required"},
		{"missing output", Options{URL: "http://127.0.0.1/"}, "OutputPath is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CapturePagePNG(context.Background(), tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsNormalize(t *testing.T) {
	o := Options{URL: "http://127.0.0.1/", OutputPath: "out.png"}
	if err := o.normalize(); err != nil {
		t.Fatal(err)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight {
		t.Errorf("size = %dx%d", o.Width, o.Height)
	}
	if o.Timeout != DefaultTimeoutSec*time.Second {
		t.Errorf("timeout = %v", o.Timeout)
	}

	o = Options{URL: "u", OutputPath: "p", Width: 100, Height: 50, Timeout: time.Second}
	if err := o.normalize(); err != nil {
		t.Fatal(err)
	}
	if o.Width != 100 || o.Height != 50 || o.Timeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", o)
	}
}

func TestSettledExpr(t *testing.T) {
	want := `document.querySelectorAll('[data-onec-schedule]').length === ` +
		`document.querySelectorAll('[data-onec-schedule][data-state="unconfigured"],` +
		`[data-onec-schedule][data-state="rendered"],` +
		`[data-onec-schedule][data-state="failed"]').length`
	if settledExpr != want {
		t.Errorf("settledExpr = %s\nwant %s", settledExpr, want)
	}
	if strings.Contains(settledExpr, "loading") {
		t.Error("loading must not count as settled")
	}
}
