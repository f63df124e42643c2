package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldMode is the structured log field key for the backend access mode.
	FieldMode = "backend_mode"
	// FieldProvider is the structured log field key for the direct-mode provider name.
	FieldProvider = "backend_provider"
	// FieldModel is the structured log field key for the model identifier.
	FieldModel = "backend_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger defaults to a no-op logger to avoid panics.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// BackendFields returns standard zap fields describing the backend mode,
// provider and model. Empty values are ignored to keep entries compact.
func BackendFields(mode, provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldMode, Value: mode},
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithBackendFields attaches the common backend fields to the provided logger.
func WithBackendFields(logger *zap.Logger, mode, provider, model string) *zap.Logger {
	return WithFields(logger, BackendFields(mode, provider, model)...)
}
