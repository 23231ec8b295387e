package gcsstore

import "testing"

func TestParseURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"simple", "gs://my-bucket/batch.csv", "my-bucket", "batch.csv", false},
		{"nested object", "gs://b/uploads/2025/01/batch.csv", "b", "uploads/2025/01/batch.csv", false},
		{"missing scheme", "s3://bucket/obj", "", "", true},
		{"no object", "gs://bucket", "", "", true},
		{"empty object", "gs://bucket/", "", "", true},
		{"empty", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseURI(%q) succeeded, want error", tt.uri)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURI(%q) failed: %v", tt.uri, err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("ParseURI(%q) = (%q, %q), want (%q, %q)",
					tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}
