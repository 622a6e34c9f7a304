package request

import (
	"errors"
	"testing"
)

func TestDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       Descriptor
		wantErr error
	}{
		{"valid", Descriptor{URL: "http://x/a.png", TargetWidth: 100, TargetHeight: 100}, nil},
		{"empty URL is legal", Descriptor{}, nil},
		{"zero dimensions", Descriptor{URL: "http://x/a.png"}, nil},
		{"negative width", Descriptor{URL: "http://x/a.png", TargetWidth: -1}, ErrNegativeDimension},
		{"negative height", Descriptor{URL: "http://x/a.png", TargetHeight: -1}, ErrNegativeDimension},
		{"negative preview", Descriptor{URL: "http://x/a.png", PreviewWidth: -5}, ErrNegativeDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDescriptor_Preview(t *testing.T) {
	d := Descriptor{
		URL:           "http://x/a.png",
		PreviewURL:    "http://x/a_small.png",
		TargetWidth:   500,
		TargetHeight:  400,
		PreviewWidth:  50,
		PreviewHeight: 40,
	}

	if !d.HasPreview() {
		t.Fatal("HasPreview() = false, want true")
	}

	pv := d.Preview()
	if pv.URL != d.PreviewURL {
		t.Errorf("Preview().URL = %q, want %q", pv.URL, d.PreviewURL)
	}
	if pv.TargetWidth != 50 || pv.TargetHeight != 40 {
		t.Errorf("Preview() dimensions = %dx%d, want 50x40", pv.TargetWidth, pv.TargetHeight)
	}
	if !pv.UseCacheOnly {
		t.Error("Preview().UseCacheOnly = false, want true: previews are never fetched")
	}

	if (Descriptor{URL: "http://x/a.png"}).HasPreview() {
		t.Error("HasPreview() = true for descriptor without preview URL")
	}
}
