// Package resource bounds the memory, worker slots and IO bandwidth used by
// archive operations and parallel construction.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:     1 << 30,
//	    MaxBackgroundWorkers: 8,
//	    IOLimitBytesPerSec:   64 << 20,
//	})
//
// Memory is reserved before a vector is materialized and released when it is
// handed back. Worker slots gate the goroutines of build.Fill. The IO limiter
// is a token bucket shared by RateLimitedReader and RateLimitedWriter.
//
// A nil *Controller is valid and imposes no limits.
package resource
