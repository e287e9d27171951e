package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumizer/internal/errors"

	"github.com/hashicorp/vault/api"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "test/path")
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for input %v, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestApplyAIKeyToConfig(t *testing.T) {
	config := &Config{
		AI: AIConfig{
			Requirements: OperationAIConfig{},
			Recommend:    OperationAIConfig{},
		},
	}

	aiKey := "test-ai-key"
	applyAIKeyToConfig(config, aiKey)

	if config.AI.APIKey != aiKey {
		t.Errorf("expected global API key %q, got %q", aiKey, config.AI.APIKey)
	}
	if config.AI.Requirements.APIKey != aiKey {
		t.Errorf("expected requirements API key %q, got %q", aiKey, config.AI.Requirements.APIKey)
	}
	if config.AI.Recommend.APIKey != aiKey {
		t.Errorf("expected recommend API key %q, got %q", aiKey, config.AI.Recommend.APIKey)
	}
}

func TestApplyAIKeyToConfigWithExistingKeys(t *testing.T) {
	existingKey := "existing-requirements-key"
	config := &Config{
		AI: AIConfig{
			Requirements: OperationAIConfig{APIKey: existingKey},
			Recommend:    OperationAIConfig{},
		},
	}

	aiKey := "test-ai-key"
	applyAIKeyToConfig(config, aiKey)

	if config.AI.APIKey != aiKey {
		t.Errorf("expected global API key %q, got %q", aiKey, config.AI.APIKey)
	}
	// Per-operation keys are only filled in when empty
	if config.AI.Requirements.APIKey != existingKey {
		t.Errorf("expected requirements API key %q to be preserved, got %q", existingKey, config.AI.Requirements.APIKey)
	}
	if config.AI.Recommend.APIKey != aiKey {
		t.Errorf("expected recommend API key %q, got %q", aiKey, config.AI.Recommend.APIKey)
	}
}

func TestResolveVaultToken(t *testing.T) {
	logger := newTestLogger()

	t.Run("token from config", func(t *testing.T) {
		config := VaultConfig{Token: "direct-token"}

		token, err := resolveVaultToken(config, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "direct-token" {
			t.Errorf("expected %q, got %q", "direct-token", token)
		}
	})

	t.Run("token from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		tokenFile := filepath.Join(tmpDir, "vault-token")
		if err := os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600); err != nil {
			t.Fatalf("failed to write token file: %v", err)
		}

		config := VaultConfig{TokenFile: tokenFile}

		token, err := resolveVaultToken(config, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "file-token" {
			t.Errorf("expected trimmed token %q, got %q", "file-token", token)
		}
	})

	t.Run("missing token file", func(t *testing.T) {
		config := VaultConfig{TokenFile: "/nonexistent/token/file"}

		_, err := resolveVaultToken(config, logger)
		if err == nil {
			t.Fatal("expected error for missing token file")
		}
		if !strings.Contains(err.Error(), "failed to read vault token file") {
			t.Errorf("unexpected error message: %v", err)
		}
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, logger)
		if err == nil {
			t.Fatal("expected error when no token is provided")
		}
		if !strings.Contains(err.Error(), "vault token is required") {
			t.Errorf("unexpected error message: %v", err)
		}
	})

	t.Run("empty token from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		tokenFile := filepath.Join(tmpDir, "empty-token")
		if err := os.WriteFile(tokenFile, []byte("   \n  \n"), 0600); err != nil {
			t.Fatalf("failed to write token file: %v", err)
		}

		config := VaultConfig{TokenFile: tokenFile}

		_, err := resolveVaultToken(config, logger)
		if err == nil {
			t.Fatal("expected error for empty token file")
		}
		if !strings.Contains(err.Error(), "vault token is required") {
			t.Errorf("unexpected error message: %v", err)
		}
	})
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{
		Vault: VaultConfig{Enabled: false},
	}

	if err := ApplyVaultSecrets(config, newTestLogger()); err != nil {
		t.Fatalf("expected no error with vault disabled, got %v", err)
	}
	if config.AI.APIKey != "" {
		t.Errorf("expected API key to remain empty, got %q", config.AI.APIKey)
	}
}

func TestVaultClientExtractSecretData(t *testing.T) {
	vc := &VaultClient{logger: newTestLogger()}

	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
		expected    map[string]any
	}{
		{
			name: "valid KVv2 secret",
			secret: &api.Secret{
				Data: map[string]any{
					"data": map[string]any{
						"key1": "value1",
						"key2": "value2",
					},
				},
			},
			expected: map[string]any{"key1": "value1", "key2": "value2"},
		},
		{
			name: "missing data field",
			secret: &api.Secret{
				Data: map[string]any{
					"metadata": map[string]any{},
				},
			},
			expectError: true,
		},
		{
			name: "data field wrong type",
			secret: &api.Secret{
				Data: map[string]any{
					"data": "not-a-map",
				},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := vc.extractSecretData(tt.secret, "secret/test")
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d keys, got %d", len(tt.expected), len(result))
			}
			for k, v := range tt.expected {
				if result[k] != v {
					t.Errorf("key %q: expected %v, got %v", k, v, result[k])
				}
			}
		})
	}
}

func TestVaultClientExtractSecretVersion(t *testing.T) {
	vc := &VaultClient{logger: newTestLogger()}

	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
		expected    int64
	}{
		{
			name: "valid version as int64",
			secret: &api.Secret{
				Data: map[string]any{
					"metadata": map[string]any{
						"version": int64(42),
					},
				},
			},
			expected: 42,
		},
		{
			name: "valid version as float64",
			secret: &api.Secret{
				Data: map[string]any{
					"metadata": map[string]any{
						"version": float64(42),
					},
				},
			},
			expected: 42,
		},
		{
			name: "missing metadata field",
			secret: &api.Secret{
				Data: map[string]any{
					"data": map[string]any{},
				},
			},
			expectError: true,
		},
		{
			name: "missing version field",
			secret: &api.Secret{
				Data: map[string]any{
					"metadata": map[string]any{
						"other": "value",
					},
				},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := vc.extractSecretVersion(tt.secret, "secret/test")
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected version %d, got %d", tt.expected, result)
			}
		})
	}
}
