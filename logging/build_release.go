//go:build !debug

package logging

// SourceAnnotations is false in release builds. Build with -tags debug
// to annotate records with file and line.
const SourceAnnotations = false
