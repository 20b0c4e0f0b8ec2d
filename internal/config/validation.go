package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues.
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Validate checks cfg for invalid or contradictory values.
func Validate(cfg *Config) *ValidationResult {
	vr := &ValidationResult{}

	switch cfg.Backend {
	case BackendNative, BackendGopsutil:
	case BackendRemote:
		validateRemote(cfg.Remote, vr)
	default:
		vr.AddError("backend", fmt.Sprintf("unknown backend %q (want native, gopsutil or remote)", cfg.Backend))
	}

	if cfg.Workers < 0 {
		vr.AddError("workers", "must not be negative")
	}
	if cfg.Refresh.Interval <= 0 {
		vr.AddError("refresh.interval", "must be positive")
	}
	if cfg.Refresh.Count < 0 {
		vr.AddError("refresh.count", "must not be negative")
	}

	switch cfg.Log.Level {
	case "debug", "info", "error":
	default:
		vr.AddError("log.level", fmt.Sprintf("unknown level %q", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case LogFormatConsole, LogFormatJSON, LogFormatSlog:
	default:
		vr.AddError("log.format", fmt.Sprintf("unknown format %q", cfg.Log.Format))
	}

	if cfg.Output.Processes < 0 {
		vr.AddError("output.processes", "must not be negative")
	}
	switch cfg.Output.Sort {
	case SortCPU, SortMemory, SortPid, SortName:
	default:
		vr.AddError("output.sort", fmt.Sprintf("unknown sort order %q", cfg.Output.Sort))
	}
	return vr
}

func validateRemote(r RemoteConfig, vr *ValidationResult) {
	if r.Host == "" {
		vr.AddError("remote.host", "required for the remote backend")
	}
	if r.User == "" {
		vr.AddError("remote.user", "required for the remote backend")
	}
	if r.Port < 0 || r.Port > 65535 {
		vr.AddError("remote.port", fmt.Sprintf("out of range: %d", r.Port))
	}
	if r.CommandTimeout < 0 {
		vr.AddError("remote.command_timeout", "must not be negative")
	}

	methods := 0
	if r.KeyFile != "" {
		methods++
	}
	if r.Password != "" {
		methods++
	}
	if r.Agent {
		methods++
	}
	switch {
	case methods == 0:
		vr.AddError("remote", "one of key_file, password or agent is required")
	case methods > 1:
		vr.AddError("remote", "key_file, password and agent are mutually exclusive")
	}

	if r.Passphrase != "" && r.KeyFile == "" {
		vr.AddWarning("remote.passphrase", "ignored without key_file")
	}
	if r.InsecureIgnoreHostKey {
		vr.AddWarning("remote.insecure_ignore_host_key", "host key verification is disabled")
	}
}
