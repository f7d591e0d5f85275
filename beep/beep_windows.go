//go:build windows

package beep

// No playback backend on Windows; cues are silent.
func play([]int16) {}
