// Package cmd defines the indexetl command line.
//
// A publish run loads each configured series from its upstream (an HTML
// table scraped with colly/goquery, or the SIDRA JSON API), normalizes it and
// derives the latest reference period. Every target bucket is then checked in
// order: when the bucket holds no artifact for the series, or the state store
// has no marker, or the marker is older than the latest period, a CSV snapshot
// is written and the marker advanced. Otherwise the bucket is left untouched.
// Each decision is logged as a status line.
//
// Configuration comes from defaults, an optional --config file, INDEXETL_*
// environment variables and flags, in increasing order of precedence.
// Destination and state backends are chosen with storage.provider
// (s3, gcs, local, memory) and state.provider (dynamodb, postgres, memory).
//
// Example:
//
//	indexetl publish --target-buckets raw,work-area --series IPCA,INPC
//	indexetl publish --target-buckets raw --source-url https://example.org/igpm
package cmd
