package commands

import (
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/dirsum/internal/classifier"
	"github.com/temirov/dirsum/internal/tokenizer"
	"github.com/temirov/dirsum/internal/types"
)

const (
	warningFileReadMessage   = "unable to read file"
	warningTokenCountMessage = "failed to count tokens"

	errorReadFileFormat = "read %s: %w"
)

type fileInspectionConfig struct {
	Classifier   classifier.FileClassifier
	TokenCounter tokenizer.Counter
	Logger       *zap.Logger
}

type fileInspectionResult struct {
	Type      string
	MimeType  string
	Lines     []string
	ReadError error
	Tokens    int
}

// inspectFile classifies path and, for text files, loads its numbered lines.
// Failures never abort the walk: they are returned in ReadError and the file is
// reported like a binary file.
func inspectFile(path string, info fs.FileInfo, config fileInspectionConfig) fileInspectionResult {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	inspection, classifyErr := config.Classifier.ClassifyFile(path, info)
	if classifyErr != nil {
		logger.Warn(warningFileReadMessage, zap.String("path", path), zap.Error(classifyErr))
		return fileInspectionResult{Type: types.NodeTypeBinary, ReadError: classifyErr}
	}

	result := fileInspectionResult{Type: types.NodeTypeFile, MimeType: inspection.MimeType}
	if inspection.Verdict == classifier.Binary {
		result.Type = types.NodeTypeBinary
		return result
	}

	content, readErr := os.ReadFile(path)
	if readErr != nil {
		wrappedErr := fmt.Errorf(errorReadFileFormat, path, readErr)
		logger.Warn(warningFileReadMessage, zap.String("path", path), zap.Error(wrappedErr))
		return fileInspectionResult{Type: types.NodeTypeBinary, MimeType: inspection.MimeType, ReadError: wrappedErr}
	}
	result.Lines = SplitLines(content)

	if config.TokenCounter != nil {
		countResult, tokenErr := tokenizer.CountBytes(config.TokenCounter, content)
		if tokenErr != nil {
			logger.Warn(warningTokenCountMessage, zap.String("path", path), zap.Error(tokenErr))
		} else if countResult.Counted {
			result.Tokens = countResult.Tokens
		}
	}
	return result
}
