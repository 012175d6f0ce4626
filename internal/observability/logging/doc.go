// Package logging builds the slog loggers used by the CLI and the worker.
//
// All output goes to stderr as JSON so that stdout carries only the
// "Message: ..." line. Each run or scheduled job is tagged with a uuid run_id:
//
//	ctx, logger := logging.WithRunID(ctx, logging.NewLogger(), logging.NewRunID())
//	logger.Info("status run started")
package logging
