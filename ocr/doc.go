package ocr

// Package ocr defines abstraction layers for plugging OCR engines into the
// PDF processing pipeline: the library's own ocrad-backed recognizer
// (package ocradengine) alongside external engines such as Tesseract
// (package tesseract) or a remote service. The interfaces are intentionally
// small and transport-agnostic so engines can be backed by local binaries,
// native libraries, or an in-process recognizer without leaking
// provider-specific concerns into callers.
