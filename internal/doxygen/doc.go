// Package doxygen drives the external documentation generator.
//
// It renders a Doxyfile from the resolved BuildConfig, runs the generator as a blocking
// subprocess and verifies that an entry artifact was produced. The optional Rasterizer
// converts generated SVG graphs to PNG images on a best-effort basis.
package doxygen
