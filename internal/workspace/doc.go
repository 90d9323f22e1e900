// Package workspace manages the scratch directory of a single documentation run.
//
// Each Manager owns one timestamped directory (e.g., autodocs-20251214-122336-8812) that
// holds run-local files such as the generated Doxyfile. Cleanup removes it completely.
package workspace
