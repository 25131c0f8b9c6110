//go:build debug

package logging

// SourceAnnotations is true in debug builds (-tags debug).
const SourceAnnotations = true
