// Package audio maps a terminal symbol stream onto 8-bit PCM samples and writes them
// as a mono 8 kHz WAV file.
//
// The number of samples is not known until a traversal finishes, so a Sink grows its
// buffer on demand and truncates to the exact emitted count before encoding.
package audio
