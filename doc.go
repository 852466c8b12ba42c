// Package avcodec wraps a native libavcodec codec context behind one API that
// works across the library's three calling-convention generations.
//
// The generations differ in how a context is opened (avcodec_open or
// avcodec_open2), how audio is decoded (into a caller buffer with
// avcodec_decode_audio3, or into an AVFrame with avcodec_decode_audio4) and
// how audio is encoded (into a context-owned buffer with avcodec_encode_audio,
// or into an AVPacket with avcodec_encode_audio2). A CodecContext probes the
// loaded library once when it is created and binds the matching variants for
// its whole lifetime.
//
// # Decoding
//
// A Packet is a cursor over its bytes. Each decode call consumes part of the
// packet and leaves Size and Data describing the rest; resubmit the same
// packet until Size reports 0:
//
//	for pkt.Size() > 0 {
//		got, err := cc.DecodeVideoFrame(pkt, frame)
//		if err != nil {
//			return err
//		}
//		if got {
//			use(frame)
//		}
//	}
//
// # Encoding
//
// Video, and audio on libraries without avcodec_encode_audio2, is encoded
// into an output buffer owned by the context (DefaultOutputBufferSize bytes,
// allocated on first use). The packet borrows that buffer until the next
// encode call; copy it with Packet.Bytes to keep it. FlushVideo and FlushAudio
// drain frames buffered in the encoder.
//
// # Errors
//
// Negative native statuses surface as *NativeCallError with the code
// unchanged. A failed output buffer allocation is a *ResourceExhaustionError
// (errors.Is ErrResourceExhausted). "No output yet" is never an error: decode
// and encode calls return false, and so does every call on a closed context.
//
// # Native Libraries
//
// LoadLibrary dlopens libavcodec, libavutil and libstream_avcodec with purego
// (no cgo). Struct fields are accessed through the libstream_avcodec shim.
// Set AVCODEC_LIB_PATH, AVUTIL_LIB_PATH and STREAM_AVCODEC_LIB_PATH, or
// STREAM_SDK_LIB_PATH to a directory, to override discovery.
//
// Package avtest provides an in-memory Library for tests.
//
// # Concurrency
//
// A CodecContext must not be used from several goroutines at once.
// Independent contexts share no state.
package avcodec
