package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestExitCode(t *testing.T) {
	// GIVEN: An observed logger
	// WHEN: run fails
	// THEN: The failure is logged at error level and the exit code is 1

	core, logs := observer.New(zap.InfoLevel)
	code := exitCode(zap.New(core), errors.New("listen tcp :8080: address already in use"))

	assert.Equal(t, 1, code)
	entries := logs.FilterMessage("server failed").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	}
}

func TestExitCode_CleanShutdown(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	assert.Equal(t, 0, exitCode(zap.New(core), nil))
	assert.Zero(t, logs.Len())
}
