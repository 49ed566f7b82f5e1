// Package ohou provides the transport and data model for the ohou.se
// listing API.
//
// This package includes:
//   - The Category enumeration, carrying each category's endpoints as data
//   - Client, the HTTP transport with the browser header set
//   - Listing response decoding with upstream-shape validation
//
// Example usage:
//
//	client := ohou.NewClient(&cfg.HTTP, log)
//	body, err := client.Fetch(ctx, ohou.GetListingURL(client.BaseURL(), ohou.Advices),
//	    ohou.ListingParams("kitchen", 1, ohou.PageSize))
//	if err != nil {
//	    if errors.IsFetch(err) {
//	        // network failure or non-2xx status
//	    }
//	}
//	page, err := ohou.DecodeListingPage(body, ohou.Advices, "")
package ohou
