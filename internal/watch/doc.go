// Package watch revalidates the site when descriptors or content change
// and on a fixed schedule.
//
// Watcher turns bursts of file system events into a single request after a
// quiet period. Scheduler fires requests at an interval. Both feed a Queue,
// which runs at most one revalidation at a time and coalesces requests that
// arrive while one is in progress.
package watch
