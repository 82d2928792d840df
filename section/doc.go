// Package section defines the on-disk sections of an encoded trail database:
// the TOC at the head of trails.data, the single-line info file, and the
// serialized codebook. Writers are used by the encoder; the matching readers
// exist for verification and for decode-side tooling.
//
// Everything binary is little-endian.
package section
