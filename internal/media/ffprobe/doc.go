// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The builtin transcode task probes files through Inspect and VideoCodec to
// decide whether re-encoding is needed. The package has no omzet-specific
// dependencies beyond the binary name passed in.
package ffprobe
