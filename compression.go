package exrplanes

import "os"

// ForceZIPEnv is the environment variable that switches writes from ZIPS to
// ZIP compression.
const ForceZIPEnv = "LIBOPENEXR_FORCE_ZIP"

// ToggleFunc returns the current raw value of the compression toggle.
type ToggleFunc func() string

// EnvToggle reads ForceZIPEnv from the process environment.
func EnvToggle() string {
	return os.Getenv(ForceZIPEnv)
}

// SelectCompression returns CompressionZIP when toggle is set to anything
// other than "" or "0", and CompressionZIPS otherwise.
func SelectCompression(toggle string) Compression {
	if toggle != "" && toggle != "0" {
		return CompressionZIP
	}
	return CompressionZIPS
}
