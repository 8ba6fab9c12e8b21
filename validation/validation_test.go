package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/locallm/errors"
)

func TestValidatorRequired(t *testing.T) {
	if New().Required("api_key", "secret").HasErrors() {
		t.Error("expected no errors for valid input")
	}
	if !New().Required("api_key", "").HasErrors() {
		t.Error("expected error for empty required field")
	}
	if !New().Required("api_key", "   ").HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorHTTPURL(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"", false},
		{"http://localhost:5001", false},
		{"https://example.com/api", false},
		{"localhost:5001", true},
		{"ftp://host", true},
		{"http://", true},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			if got := New().HTTPURL("server_url", tc.value).HasErrors(); got != tc.wantErr {
				t.Errorf("HTTPURL(%q) error = %v, want %v", tc.value, got, tc.wantErr)
			}
		})
	}
}

func TestValidatorMinAndOneOf(t *testing.T) {
	v := New().Min("ctx", 0, 1).OneOf("backend", "vllm", []string{"local", "ollama"})
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %v", v.Errors())
	}
	if New().OneOf("backend", "", []string{"local"}).HasErrors() {
		t.Error("empty value is left to Required")
	}
}

func TestValidatorValidate_ConfigurationError(t *testing.T) {
	err := New().Required("api_key", "").Custom(false, "models_dir", "must exist").Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "api_key: is required") || !strings.Contains(err.Error(), "models_dir: must exist") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidatorValidate_NoErrors(t *testing.T) {
	if err := New().Required("x", "y").Validate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

type sampleConfig struct {
	Backend   string `mapstructure:"backend" validate:"required,oneof=local ollama"`
	ModelsDir string `mapstructure:"models_dir" validate:"required_if=Backend local"`
	ServerURL string `mapstructure:"server_url" validate:"omitempty,http_url"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		cfg       sampleConfig
		wantField string
	}{
		{"valid", sampleConfig{Backend: "ollama"}, ""},
		{"missing backend", sampleConfig{}, "backend"},
		{"unknown backend", sampleConfig{Backend: "vllm"}, "backend"},
		{"local needs models dir", sampleConfig{Backend: "local"}, "models_dir"},
		{"bad url", sampleConfig{Backend: "ollama", ServerURL: "not a url"}, "server_url"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.cfg)
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != errors.ErrCodeConfiguration {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if appErr.Details[errors.DetailField] != tc.wantField {
				t.Errorf("expected field %q, got %v", tc.wantField, appErr.Details)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("ModelsDir"); got != "models_dir" {
		t.Errorf("expected models_dir, got %q", got)
	}
}
