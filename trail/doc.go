// Package trail implements the encoder pipeline that turns an in-memory
// event graph into the three on-disk artifacts of a trail database:
// trails.data (TOC plus bit-packed per-actor trails), trails.codebook (the
// Huffman codebook and field-stats table) and info (the counters line).
//
// The pipeline is single-threaded and runs to completion in one call:
//
//	timestamp range scan
//	  -> group, sort and delta-encode events per actor, spill to a temp file
//	  -> unigram frequency pass over the spill
//	  -> bigram discovery and gram frequency pass over the spill
//	  -> codebook and field-stats construction
//	  -> trail writing pass over the spill
//	  -> codebook serialization, temp file removal
//
// Every pass reads the spill file sequentially from the start; passes never
// interleave reads. Failures are terminal: the encoder returns the first
// error and only guarantees removal of the temp file, not of partially
// written outputs.
package trail
