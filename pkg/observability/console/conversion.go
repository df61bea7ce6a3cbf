package console

import (
	"fmt"
	"strings"

	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
)

const redactedValue = "[REDACTED]"

var sensitiveKeyParts = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apikey",
	"access_key",
	"client_id",
	"authorization",
	"bearer",
	"credential",
	"private_key",
	"cookie",
}

// isSensitiveKey reports whether a field key looks like it carries a credential.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// sanitizeFields replaces values of credential-like keys.
func sanitizeFields(fields []observability.Field) []observability.Field {
	result := make([]observability.Field, len(fields))
	for i, field := range fields {
		if isSensitiveKey(field.Key) {
			field.Value = redactedValue
		}
		result[i] = field
	}
	return result
}

// convertFields converts observability fields into zap fields, keeping their order.
func convertFields(fields []observability.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	sanitized := sanitizeFields(fields)
	result := make([]zap.Field, len(sanitized))
	for i, field := range sanitized {
		result[i] = convertFieldToZap(field)
	}
	return result
}

func convertFieldToZap(field observability.Field) zap.Field {
	switch v := field.Value.(type) {
	case string:
		return zap.String(field.Key, v)
	case int:
		return zap.Int(field.Key, v)
	case int64:
		return zap.Int64(field.Key, v)
	case float64:
		return zap.Float64(field.Key, v)
	case bool:
		return zap.Bool(field.Key, v)
	case error:
		// zap.NamedError would add a verbose stack for pkg/errors values.
		return zap.String(field.Key, v.Error())
	default:
		return zap.Any(field.Key, v)
	}
}

// convertFieldToOTelAttr converts an observability.Field to an OTel log KeyValue.
func convertFieldToOTelAttr(field observability.Field) otellog.KeyValue {
	if isSensitiveKey(field.Key) {
		return otellog.String(field.Key, redactedValue)
	}

	switch v := field.Value.(type) {
	case string:
		return otellog.String(field.Key, v)
	case int:
		return otellog.Int(field.Key, v)
	case int64:
		return otellog.Int64(field.Key, v)
	case float64:
		return otellog.Float64(field.Key, v)
	case bool:
		return otellog.Bool(field.Key, v)
	case error:
		return otellog.String(field.Key, v.Error())
	default:
		return otellog.String(field.Key, fmt.Sprint(v))
	}
}

// convertLevelToOTel converts observability.LogLevel to OTel Severity.
func convertLevelToOTel(level observability.LogLevel) otellog.Severity {
	severityMap := map[observability.LogLevel]otellog.Severity{
		observability.LogLevelDebug: otellog.SeverityDebug,
		observability.LogLevelInfo:  otellog.SeverityInfo,
		observability.LogLevelWarn:  otellog.SeverityWarn,
		observability.LogLevelError: otellog.SeverityError,
	}

	if severity, exists := severityMap[level]; exists {
		return severity
	}

	return otellog.SeverityInfo
}
