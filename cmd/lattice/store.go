package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/pkg/adapters/file"
	"github.com/aretw0/lattice/pkg/persistence/middleware"
	"github.com/aretw0/lattice/pkg/ports"
)

// Environment variables carrying run log encryption keys, base64-encoded
// 32-byte values. The fallback variable may hold several keys separated
// by commas, newest first.
const (
	envRunLogKey         = "LATTICE_RUNLOG_KEY"
	envRunLogKeyFallback = "LATTICE_RUNLOG_KEY_FALLBACK"
)

// openRunStore builds the run store for a command, applying PII masking
// and encryption middleware when configured via --mask flags and the
// LATTICE_RUNLOG_KEY environment variable.
func openRunStore(cmd *cobra.Command) (ports.RunStore, error) {
	runsDir, _ := cmd.Flags().GetString("runs-dir")
	masks, _ := cmd.Flags().GetStringArray("mask")

	var mws []middleware.Middleware

	if len(masks) > 0 {
		for _, pattern := range masks {
			if _, err := regexp.Compile(pattern); err != nil {
				return nil, fmt.Errorf("invalid --mask pattern %q: %w", pattern, err)
			}
		}
		mws = append(mws, middleware.NewPIIMiddleware(masks))
	}

	if raw := os.Getenv(envRunLogKey); raw != "" {
		active, err := decodeKey(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envRunLogKey, err)
		}
		var fallbacks [][]byte
		for _, part := range strings.Split(os.Getenv(envRunLogKeyFallback), ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			key, err := decodeKey(part)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", envRunLogKeyFallback, err)
			}
			fallbacks = append(fallbacks, key)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		}))
	}

	return middleware.Wrap(file.NewRunStore(runsDir), mws...), nil
}

func decodeKey(raw string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// addMaskFlag registers the --mask flag on commands that persist runs.
func addMaskFlag(cmd *cobra.Command) {
	cmd.Flags().StringArray("mask", nil, "Regex for state keys to mask in the audit log (repeatable)")
}
