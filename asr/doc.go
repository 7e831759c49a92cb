// Package asr speaks the ASR engine's binary socket protocol.
//
// Every frame is big-endian. A recognition request is
//
//	checkcode int32 | requestCode int32 | format uint8 | audioLength int32 | audio
//
// and the engine answers with
//
//	checkcode int32 | requestCode int32 | status uint8 [| textLength int32 | text]
//
// where the text part is present only when status is 0. The engine closes
// the connection after its reply; a Client opens one connection per call.
//
//	c, err := asr.NewClient(asr.Config{Host: "10.0.0.5", Port: 2500})
//	res, err := c.Recognize(ctx, asr.FormatWAV, audio)
package asr
