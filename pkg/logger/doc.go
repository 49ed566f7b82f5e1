// Package logger provides a structured logging interface for the crawler.
//
// It wraps zerolog with a small interface so components can be handed a
// logger (or a TestLogger in tests) instead of reaching for a global:
//
//	log := logger.GetLogger().WithField("query", "kitchen")
//	log.InfoWithFields("Listing fetched", map[string]interface{}{
//	    "page": 2,
//	    "size": 100,
//	})
//
// Console output goes to stderr and is coloured only on a terminal. Setting
// LoggingConfig.File additionally appends JSON lines to that file.
package logger
