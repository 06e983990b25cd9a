// Package logger builds *slog.Logger instances for the worker and provides
// attribute helpers that keep key names consistent across packages.
//
// New creates a JSON or text handler from functional options and wraps it in
// a ContextHandler, which runs registered ContextExtractor callbacks on every
// record. The worker uses an extractor to stamp job id and type on every line
// a handler logs with its job context.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "vocabq-worker"),
//	    logger.WithContextExtractors(jobExtractor),
//	)
//	logger.SetAsDefault(log)
//
//	log.Warn("job failed, retry scheduled",
//	    logger.JobID(job.ID),
//	    logger.JobType(job.Type),
//	    logger.Attempt(job.Attempts, job.MaxAttempts),
//	    logger.Error(err),
//	)
//
// Error returns an empty attribute for a nil error, so it can be passed
// without a nil check.
package logger
