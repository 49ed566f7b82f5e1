// Package storage serializes crawl results.
//
// The Manager writes a []crawler.Record as indented JSON, JSON lines, YAML or
// a human-readable table, either to any io.Writer or to a file. File writes go
// through a temporary sibling and an atomic rename, and an existing file is
// left untouched unless overwriting is enabled.
//
// Record fields keep their absent values in every machine format: a feed card
// has no url key, and keywords is null when a page had no tags but [] when the
// upstream sent an empty list.
//
// Usage:
//
//	manager, err := storage.NewManager(&cfg.Output, log)
//	if err != nil {
//	    return err
//	}
//	if cfg.Output.Path == "" {
//	    return manager.Write(os.Stdout, records)
//	}
//	return manager.Save(cfg.Output.Path, records)
package storage
