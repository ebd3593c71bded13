// Package opus turns episode audio into Opus frames and streams them to a
// Discord voice connection.
//
// Frames travel in a minimal binary format: concatenated length-prefixed
// frames ([uint16 LE length][opus bytes]). No headers, no metadata. The same
// format is what the episode cache stores.
//
// EncodeURL transcodes audio with FFmpeg and produces length-prefixed
// frames. FrameReader reads them back. Stream sends frames to a voice
// connection's send channel.
package opus
