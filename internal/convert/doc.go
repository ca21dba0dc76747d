// Package convert transcodes downloaded audio streams with ffmpeg.
//
// The service shells out to the ffmpeg and ffprobe binaries, which must
// be installed on the system. Call Available before starting a
// conversion to surface a missing installation early:
//
//	service := convert.NewService()
//	if err := service.Available(); err != nil {
//		// ffmpeg or ffprobe is not installed
//	}
//
// # Transcoding
//
// Convert runs a single transcode described by a Request. The output
// format decides the codec: AAC in an M4A container, LAME MP3, or
// FLAC. Video streams and source metadata are always stripped, tags
// are written in a separate pass by the audio package.
//
//	err := service.Convert(ctx, convert.Request{
//		InputPath:  "/tmp/stream.webm",
//		OutputPath: "/tmp/track.m4a",
//		Format:     config.FormatM4A,
//		Bitrate:    "256k",
//	}, func(done, total float64) {
//		fmt.Printf("%.0f%%\n", done/total*100)
//	})
//
// Progress is parsed from the ffmpeg progress stream. The input
// duration comes from ffprobe; when probing fails the conversion still
// runs, only without progress updates.
//
// # Output Verification
//
// M4A outputs are probed after the transcode to confirm the container
// really carries an AAC track. A container without one fails the
// conversion even when ffmpeg exited cleanly.
package convert
