// Package vqgate provides a Go client for the vqgate semantic search gateway.
//
// The gateway translates structured filter queries into vector similarity
// searches against the backing index and returns normalized results.
//
//	client := vqgate.New("http://localhost:8080", vqgate.WithAPIKey("secret"))
//
//	items, err := client.Query(ctx, vqgate.SearchRequest{
//	    Collection: "articles",
//	    Query:      "machine learning",
//	    TopK:       10,
//	    Filter: vqgate.And(
//	        vqgate.Eq("status", "active"),
//	        vqgate.Gte("year", 2020),
//	    ),
//	})
//
// Errors returned by the server carry a machine-readable code and can be
// inspected with errors.Is against the package sentinels.
package vqgate
