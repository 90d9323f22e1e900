// Package extract turns a generated documentation tree into a bounded text corpus.
//
// Text concatenates the visible text of every HTML page and cuts the result to a fixed
// number of characters. The cut is a plain prefix: it is lossy and ignores word
// boundaries. Discovery order is lexical unless Options.Sorted is false, in which case
// the order is whatever the filesystem returns and may differ between machines.
package extract
