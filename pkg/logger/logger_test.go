package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.info)
	assert.NotNil(t, logger.error)
	assert.NotNil(t, logger.warn)
}

func TestInfo(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)

	// Test that Info doesn't panic
	logger.Info("Test message: %s", "info")
}

func TestError(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)

	// Test that Error doesn't panic
	logger.Error("Test error: %s", "error")
}

func TestWarn(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)

	// Test that Warn doesn't panic
	logger.Warn("Test warning: %s", "warning")
}

func TestLogger_Formatting(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)

	// Test formatting with multiple args
	logger.Info("User %s requested feed variant %s", "john", "ranked")
	logger.Error("Failed to process upload %d: %s", 404, "not found")
	logger.Warn("Warning: %s count is %d", "pending posts", 5)
}
