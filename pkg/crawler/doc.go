// Package crawler drives a crawl of the ohou.se listing API.
//
// A crawl has two halves. The Paginator turns a query and an optional item
// cap into listing requests of at most ohou.PageSize items each and collects
// either detail-page URLs with their timestamps (advices, projects) or
// complete records (feeds, whose cards carry their text inline). The Crawler
// then visits each detail URL in order, extracts text and keywords with
// package extract, and assembles Records.
//
// Everything is sequential: one request is in flight at a time, and the only
// way to stop a run early is to cancel its context.
//
// Usage:
//
//	client := ohou.NewClient(&cfg.HTTP, log)
//	c := crawler.New(client, client.BaseURL(), log)
//
//	limit := 50
//	records, err := c.Run(ctx, []string{"kitchen", "bathroom"}, crawler.Options{
//	    Category: ohou.Advices,
//	    Limit:    &limit,
//	})
//	var qerr *crawler.QueryError
//	if errors.As(err, &qerr) {
//	    // records holds everything crawled before qerr.Query failed
//	}
//
// Failure policy:
//
// A failing query never discards the records of earlier queries. By default
// the run stops at the first failure; Options.ContinueOnError skips the
// failing query and keeps going, reporting every failure in a joined error.
// Nothing is retried.
package crawler
