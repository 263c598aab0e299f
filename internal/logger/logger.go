package logger

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger wraps logrus for structured logging with request context support
type Logger struct {
	*logrus.Entry
}

// New creates a new logger
func New() *Logger {
	return &Logger{
		Entry: logrus.NewEntry(logrus.StandardLogger()),
	}
}

// WithContext creates a logger carrying the authenticated user and resolved
// tenant from the request context
func WithContext(ctx context.Context) *Logger {
	logger := New()

	if email, ok := ctx.Value("email").(string); ok && email != "" {
		logger.Entry = logger.Entry.WithField("user", email)
	} else {
		logger.Entry = logger.Entry.WithField("user", "anonymous")
	}

	if tenantID, ok := ctx.Value("tenant_id").(uuid.UUID); ok && tenantID != uuid.Nil {
		logger.Entry = logger.Entry.WithField("tenant_id", tenantID.String())
	}

	return logger
}

// WithTenant adds the tenant identifier to the logger
func (l *Logger) WithTenant(tenantID uuid.UUID) *Logger {
	return &Logger{
		Entry: l.Entry.WithField("tenant_id", tenantID.String()),
	}
}

// WithField adds a field to the logger
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		Entry: l.Entry.WithField(key, value),
	}
}

// WithFields adds multiple fields to the logger
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{
		Entry: l.Entry.WithFields(fields),
	}
}
