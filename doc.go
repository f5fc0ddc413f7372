// Package halog provides an asynchronous, multi-producer/single-consumer
// logging engine for long-running server processes.
//
// Many goroutines format records into small per-record buffers; a single
// background goroutine drains a double-buffered pipeline to disk through a
// rolling log-file manager, with bounded memory use, timed flushes, overflow
// shedding under backlog, and optional per-buffer compression.
//
// # Quick start
//
//	eng, err := halog.Init("myapp", halog.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer eng.Shutdown()
//
//	eng.Info().Str("hello world").Finish()
//	eng.Errorf("request failed: %v", err)
//
// # Level gate
//
// Records below Config.MinLevel are never formatted: Info()/Debug()/...
// check the threshold before touching the pipeline.
//
// # Record lifetime
//
// A Record is a short-lived builder bound to the goroutine that created it.
// Append typed fragments with the Str/Int/Bool/... methods, then call
// Finish to stamp the trailer and hand the assembled bytes to the pipeline.
// Forgetting to call Finish leaks nothing: the pooled Record is simply not
// returned to its pool and is garbage collected, but the line will never
// reach disk.
//
// # Configuration
//
//	cfg := halog.Config{
//		Dir:               "./log/",
//		Prefix:            "myapp",
//		MinLevel:          halog.LevelInfo,
//		MaxPipelineSizeMB: 10,
//		MaxFileSizeKB:     1024,
//		MaxFiles:          10,
//		FlushInterval:     3 * time.Second,
//		Stderr:            true,
//		Codec:             halog.NewZstdCodec(),
//	}
//	eng, err := halog.Init("myapp", cfg)
//
// Config can also be loaded from YAML via LoadConfigFile, for deployments
// that prefer a file over programmatic construction.
package halog
