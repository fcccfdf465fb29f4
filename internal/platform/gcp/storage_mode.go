package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

// SnapshotStorageConfig selects where snapshots go. An empty Bucket disables
// snapshots entirely.
type SnapshotStorageConfig struct {
	Bucket       string            `yaml:"bucket"`
	Mode         ObjectStorageMode `yaml:"mode"`
	EmulatorHost string            `yaml:"emulator_host"`
}

func (c SnapshotStorageConfig) Enabled() bool { return strings.TrimSpace(c.Bucket) != "" }

func (c SnapshotStorageConfig) IsEmulatorMode() bool { return c.Mode == ObjectStorageModeGCSEmulator }

// Normalize lowercases the mode and infers the emulator when only
// STORAGE_EMULATOR_HOST was provided.
func (c SnapshotStorageConfig) Normalize() SnapshotStorageConfig {
	c.Bucket = strings.TrimSpace(c.Bucket)
	c.EmulatorHost = strings.TrimRight(strings.TrimSpace(c.EmulatorHost), "/")
	c.Mode = ObjectStorageMode(strings.ToLower(strings.TrimSpace(string(c.Mode))))
	if c.Mode == "" {
		if c.EmulatorHost != "" {
			c.Mode = ObjectStorageModeGCSEmulator
		} else {
			c.Mode = ObjectStorageModeGCS
		}
	}
	return c
}

func (c SnapshotStorageConfig) Validate() error {
	switch c.Mode {
	case ObjectStorageModeGCS:
		return nil
	case ObjectStorageModeGCSEmulator:
	default:
		return fmt.Errorf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", c.Mode, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator)
	}
	if c.EmulatorHost == "" {
		return fmt.Errorf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", c.Mode)
	}
	u, err := url.Parse(c.EmulatorHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", c.EmulatorHost)
	}
	return nil
}
