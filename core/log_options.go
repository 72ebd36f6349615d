// Package core provides fundamental utilities for the Rendered Frame Theory engine.
// This file contains option functions for customizing log entries.
package core

import (
	"github.com/google/uuid"
	"github.com/omegalab/rft/domain"
)

// LogWithContext is an option to add a context map to a log entry.
func LogWithContext(context map[string]any) func(log *domain.Log) error {
	return func(log *domain.Log) error {
		log.Context = context
		return nil
	}
}

// LogWithObserverID is an option to associate a log entry with an observer ID.
func LogWithObserverID(id string) func(log *domain.Log) error {
	return func(log *domain.Log) error {
		log.ObserverID = &id
		return nil
	}
}

// LogWithRenderingID is an option to associate a log entry with a rendering ID.
func LogWithRenderingID(id uuid.UUID) func(log *domain.Log) error {
	return func(log *domain.Log) error {
		log.RenderingID = &id
		return nil
	}
}

// LogWithExtensionID is an option to associate a log entry with an extension ID.
func LogWithExtensionID(id uuid.UUID) func(log *domain.Log) error {
	return func(log *domain.Log) error {
		log.ExtensionID = &id
		return nil
	}
}
