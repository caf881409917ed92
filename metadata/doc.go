// Package metadata publishes token metadata documents for minted archival
// records.
//
// Documents are content-addressed by SHA-256 and can be stored to one or more
// backends selected by URI scheme: file:// for the local filesystem, s3://
// for S3-compatible object storage, and ipfs:// for an IPFS node. The
// multi-backend wrapper stores to every available backend and fetches from
// the first one that has the content, so a single unavailable backend never
// blocks a mint.
package metadata
