// Package fs abstracts the file system calls that publish local blobs, so
// that tests can inject write, sync, close and rename failures.
//
// Production code uses fs.Default. Tests wrap it:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("catalog", fs.Fault{FailOnSync: true, FailAfterBytes: -1})
package fs
