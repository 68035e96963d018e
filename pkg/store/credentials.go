package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Credentials is a resolved service-account identity for the document store.
// Exactly one of JSON or File is set.
type Credentials struct {
	ProjectID string
	JSON      []byte
	File      string
}

// ResolveCredentials picks credentials in precedence order: a full JSON blob
// (FIREBASE_CREDENTIALS_JSON), a key file path
// (GOOGLE_APPLICATION_CREDENTIALS), then discrete
// FIREBASE_PROJECT_ID/CLIENT_EMAIL/PRIVATE_KEY fields from which a
// service-account blob is assembled. Missing all three is fatal. lookup is
// usually os.Getenv.
func ResolveCredentials(lookup func(string) string) (Credentials, error) {
	if lookup == nil {
		lookup = os.Getenv
	}

	if blob := strings.TrimSpace(lookup("FIREBASE_CREDENTIALS_JSON")); blob != "" {
		projectID, err := projectIDFromJSON([]byte(blob))
		if err != nil {
			return Credentials{}, fmt.Errorf("FIREBASE_CREDENTIALS_JSON: %w", err)
		}
		return Credentials{ProjectID: projectID, JSON: []byte(blob)}, nil
	}

	if path := strings.TrimSpace(lookup("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Credentials{}, fmt.Errorf("read credentials file: %w", err)
		}
		projectID, err := projectIDFromJSON(raw)
		if err != nil {
			return Credentials{}, fmt.Errorf("credentials file %s: %w", path, err)
		}
		return Credentials{ProjectID: projectID, File: path}, nil
	}

	projectID := strings.TrimSpace(lookup("FIREBASE_PROJECT_ID"))
	clientEmail := strings.TrimSpace(lookup("FIREBASE_CLIENT_EMAIL"))
	privateKey := lookup("FIREBASE_PRIVATE_KEY")
	if projectID == "" || clientEmail == "" || strings.TrimSpace(privateKey) == "" {
		return Credentials{}, fmt.Errorf("provide FIREBASE_CREDENTIALS_JSON, GOOGLE_APPLICATION_CREDENTIALS, or FIREBASE_PROJECT_ID/CLIENT_EMAIL/PRIVATE_KEY")
	}

	privateKeyID := strings.TrimSpace(lookup("FIREBASE_PRIVATE_KEY_ID"))
	if privateKeyID == "" {
		privateKeyID = "placeholder"
	}
	clientID := strings.TrimSpace(lookup("FIREBASE_CLIENT_ID"))
	if clientID == "" {
		clientID = "placeholder"
	}
	certURL := strings.TrimSpace(lookup("FIREBASE_CLIENT_CERT_URL"))
	if certURL == "" {
		certURL = "https://www.googleapis.com/robot/v1/metadata/x509/" + clientEmail
	}

	blob, err := json.Marshal(map[string]string{
		"type":                        "service_account",
		"project_id":                  projectID,
		"client_email":                clientEmail,
		"private_key":                 strings.ReplaceAll(privateKey, `\n`, "\n"),
		"private_key_id":              privateKeyID,
		"client_id":                   clientID,
		"auth_uri":                    "https://accounts.google.com/o/oauth2/auth",
		"token_uri":                   "https://oauth2.googleapis.com/token",
		"auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
		"client_x509_cert_url":        certURL,
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("assemble service account blob: %w", err)
	}
	return Credentials{ProjectID: projectID, JSON: blob}, nil
}

func projectIDFromJSON(raw []byte) (string, error) {
	var decoded struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("invalid service account json: %w", err)
	}
	if strings.TrimSpace(decoded.ProjectID) == "" {
		return "", fmt.Errorf("service account json is missing project_id")
	}
	return strings.TrimSpace(decoded.ProjectID), nil
}
