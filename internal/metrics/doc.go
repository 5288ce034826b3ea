// Package metrics records run and stage metrics for cubedocs.
//
// Components receive a Recorder and default to NoopRecorder, so metrics cost
// nothing unless a real recorder is injected:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	runner := build.NewRunner().WithRecorder(recorder)
//
// One-shot CLI runs export the registry to a node_exporter textfile
// (WriteTextfile); the watch command serves it over HTTP (HTTPHandler).
package metrics
