// Package transcription turns stored audio files into text.
//
// A Provider does the recognition; the default one adapts the ASR engine
// client. Service ties a Provider to upload storage:
//
//	svc := transcription.NewService(cfg, store, provider, log)
//	res, err := svc.TranscribeFile(ctx, "meeting-1700000000000-42_bob.wav")
package transcription
