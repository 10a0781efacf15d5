// Package blobstore stores small named documents.
//
// Store is the narrow get/put contract used for the verdict cache document
// and the published status document. Backends: a directory of files written
// atomically, the shared SQLite database, an S3 bucket, and an in-memory map
// for tests.
package blobstore
