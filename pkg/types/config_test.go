package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "negative history limit rejected",
			config:  Config{Backend: "sqlite", HistoryLimit: -1},
			wantErr: ErrHistoryLimitInvalid,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "memory backend needs no DataDir",
			config:  Config{Backend: "memory"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigGetHistoryLimit(t *testing.T) {
	if got := (Config{}).GetHistoryLimit(); got != DefaultHistoryLimit {
		t.Fatalf("default limit = %d, want %d", got, DefaultHistoryLimit)
	}
	if got := (Config{HistoryLimit: 5}).GetHistoryLimit(); got != 5 {
		t.Fatalf("limit = %d, want 5", got)
	}
}
