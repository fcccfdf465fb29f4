package gcp

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
)

const (
	CredentialSourceJSON = "inline_json"
	CredentialSourceFile = "file"
)

// Credentials is the outcome of the startup credential check.
type Credentials struct {
	OK      bool
	Source  string
	Path    string
	Message string
	json    []byte
}

// ClientOptions returns the options every Google client in the process is
// built with. A failed check yields no options; callers must not dial.
func (c Credentials) ClientOptions() []option.ClientOption {
	if !c.OK {
		return nil
	}
	if c.Source == CredentialSourceJSON {
		return []option.ClientOption{option.WithCredentialsJSON(c.json)}
	}
	return []option.ClientOption{option.WithCredentialsFile(c.Path)}
}

// ProjectID is the project named in the service account key, if any.
func (c Credentials) ProjectID() string {
	var key struct {
		ProjectID string `json:"project_id"`
	}
	raw := c.json
	if len(raw) == 0 {
		return ""
	}
	if err := json.Unmarshal(raw, &key); err != nil {
		return ""
	}
	return key.ProjectID
}

// CheckCredentials resolves a service account key from an inline JSON value
// or a file path. Inline JSON wins when both are set.
func CheckCredentials(inlineJSON, path string) Credentials {
	inlineJSON = strings.TrimSpace(inlineJSON)
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "{") && inlineJSON == "" {
		inlineJSON, path = path, ""
	}

	if inlineJSON != "" {
		if !json.Valid([]byte(inlineJSON)) {
			return Credentials{Source: CredentialSourceJSON, Message: "inline service account credentials are not valid JSON"}
		}
		return Credentials{OK: true, Source: CredentialSourceJSON, json: []byte(inlineJSON)}
	}

	if path == "" {
		return Credentials{Message: "Credentials file not found: GOOGLE_APPLICATION_CREDENTIALS is not set"}
	}
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return Credentials{Source: CredentialSourceFile, Path: path, Message: fmt.Sprintf("Credentials file not found at: %s", path)}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Credentials{Source: CredentialSourceFile, Path: path, Message: fmt.Sprintf("Credentials file unreadable: %v", err)}
	}
	if !json.Valid(raw) {
		return Credentials{Source: CredentialSourceFile, Path: path, Message: fmt.Sprintf("Credentials file is not valid JSON: %s", path)}
	}
	return Credentials{OK: true, Source: CredentialSourceFile, Path: path, json: raw}
}
