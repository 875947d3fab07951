// Package server is the web surface for msareview.
//
// Routes:
//
//	GET  /         form with one section field and one draft upload
//	POST /review   review the posted section with the configured strategy
//	POST /document review an uploaded .docx or .txt draft as a whole
//	GET  /ws       stream progress for a whole-document review
//	GET  /healthz  liveness
//
// Failures render inline on the form, tagged with their [review.ErrorKind].
// Reviews are serialised: one runs at a time.
package server
