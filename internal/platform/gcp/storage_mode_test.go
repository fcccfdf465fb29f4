package gcp

import "testing"

func TestSnapshotStorageConfigNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   SnapshotStorageConfig
		want ObjectStorageMode
	}{
		{"default gcs", SnapshotStorageConfig{}, ObjectStorageModeGCS},
		{"explicit gcs with host", SnapshotStorageConfig{Mode: "GCS", EmulatorHost: "http://fake-gcs:4443"}, ObjectStorageModeGCS},
		{"inferred emulator", SnapshotStorageConfig{EmulatorHost: "http://fake-gcs:4443/"}, ObjectStorageModeGCSEmulator},
		{"explicit emulator", SnapshotStorageConfig{Mode: "gcs_emulator", EmulatorHost: "http://fake-gcs:4443"}, ObjectStorageModeGCSEmulator},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Mode != tc.want {
				t.Fatalf("mode: got=%q want=%q", got.Mode, tc.want)
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestSnapshotStorageConfigValidateErrors(t *testing.T) {
	cases := []SnapshotStorageConfig{
		{Mode: "local"},
		{Mode: ObjectStorageModeGCSEmulator},
		{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "fake-gcs:4443"},
	}
	for _, cfg := range cases {
		if err := cfg.Normalize().Validate(); err == nil {
			t.Fatalf("Validate(%+v): expected error", cfg)
		}
	}
}

func TestSnapshotStorageConfigEnabled(t *testing.T) {
	if (SnapshotStorageConfig{Bucket: "  "}).Enabled() {
		t.Fatalf("blank bucket should disable snapshots")
	}
	if !(SnapshotStorageConfig{Bucket: "gdelt-snapshots"}).Enabled() {
		t.Fatalf("bucket should enable snapshots")
	}
}
