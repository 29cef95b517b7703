// Package config loads user defaults and resolves them into run settings.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/dirsum/internal/classifier"
	"github.com/temirov/dirsum/internal/matcher"
	"github.com/temirov/dirsum/internal/tokenizer"
	"github.com/temirov/dirsum/internal/types"
	"github.com/temirov/dirsum/internal/utils"
)

// ErrInvalidSetting is matched by every validation failure of Resolve.
var ErrInvalidSetting = errors.New("invalid setting")

const (
	invalidFormatFormat    = "%w: %s must be %q or %q, got %q"
	invalidSampleFormat    = "%w: %s must be positive, got %d"
	invalidThresholdFormat = "%w: %s must be within (0, 1], got %v"
)

// Settings are the effective options of one run after defaults were applied.
type Settings struct {
	Format          string
	Exclude         []string
	UseGitignore    bool
	UseIgnoreFile   bool
	IncludeGit      bool
	Hidden          bool
	SampleSize      int
	BinaryThreshold float64
	Copy            bool
	TokensEnabled   bool
	TokenModel      string
}

// Resolve applies defaults to unset values and validates the result.
func (config ApplicationConfiguration) Resolve() (Settings, error) {
	settings := Settings{
		Format:          types.FormatRaw,
		Exclude:         utils.DeduplicatePatterns(matcher.ParsePatternList(config.Exclude...)),
		UseGitignore:    boolOrDefault(config.UseGitignore, true),
		UseIgnoreFile:   boolOrDefault(config.UseIgnoreFile, true),
		IncludeGit:      boolOrDefault(config.IncludeGit, false),
		Hidden:          boolOrDefault(config.Hidden, false),
		SampleSize:      classifier.DefaultSampleSize,
		BinaryThreshold: classifier.DefaultThreshold,
		Copy:            boolOrDefault(config.Copy, false),
		TokensEnabled:   boolOrDefault(config.Tokens.Enabled, false),
		TokenModel:      tokenizer.DefaultModel,
	}
	if format := strings.ToLower(strings.TrimSpace(config.Format)); format != "" {
		if format != types.FormatRaw && format != types.FormatJSON {
			return Settings{}, fmt.Errorf(invalidFormatFormat, ErrInvalidSetting, KeyFormat, types.FormatRaw, types.FormatJSON, config.Format)
		}
		settings.Format = format
	}
	if config.SampleSize != nil {
		if *config.SampleSize <= 0 {
			return Settings{}, fmt.Errorf(invalidSampleFormat, ErrInvalidSetting, KeySampleSize, *config.SampleSize)
		}
		settings.SampleSize = *config.SampleSize
	}
	if config.BinaryThreshold != nil {
		if *config.BinaryThreshold <= 0 || *config.BinaryThreshold > 1 {
			return Settings{}, fmt.Errorf(invalidThresholdFormat, ErrInvalidSetting, KeyBinaryThreshold, *config.BinaryThreshold)
		}
		settings.BinaryThreshold = *config.BinaryThreshold
	}
	if model := strings.TrimSpace(config.Tokens.Model); model != "" {
		settings.TokenModel = model
	}
	return settings, nil
}

// ExclusionPatterns returns the configured globs plus the .git directory
// unless it is explicitly included.
func (settings Settings) ExclusionPatterns() []string {
	patterns := append([]string{}, settings.Exclude...)
	if !settings.IncludeGit {
		patterns = append(patterns, utils.GitDirectoryName)
	}
	return utils.DeduplicatePatterns(patterns)
}

// IgnoreFileNames lists the per-directory ignore files to honour.
func (settings Settings) IgnoreFileNames() []string {
	var fileNames []string
	if settings.UseGitignore {
		fileNames = append(fileNames, utils.GitIgnoreFileName)
	}
	if settings.UseIgnoreFile {
		fileNames = append(fileNames, utils.IgnoreFileName)
	}
	return fileNames
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
