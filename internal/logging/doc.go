// Package logging provides structured JSON logging for teamforge.
//
// A [Logger] wraps log/slog. Child loggers carry persistent attributes, so
// every line a pipeline stage writes can be traced back to its run:
//
//	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level, logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	runLog := logger.WithRun(runID)
//	runLog.WithStage("sizes").Info("stage complete", "swaps", 3)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"stage complete","run_id":"...","stage":"sizes","swaps":3}
//
// When the log directory is empty, output goes to stderr. Otherwise it is
// written to {dir}/teamforge.log through a [RotatingWriter].
//
// # Reading Logs Back
//
// [ReadEntries] parses the log file; [FilterEntries] narrows it by run,
// stage, level or message text; [WriteEntries] renders the result for the
// terminal. The `teamforge logs` command is built from these three.
//
// Use [NopLogger] in tests.
package logging
