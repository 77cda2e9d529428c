package ocr

// Package ocr defines the capability interface for plugging recognition
// engines (a local Tesseract binding, remote HTTP services) into the plate
// pipeline, plus the strategy runner that plays an ordered list of engine
// configurations against one image and keeps the most confident answer. The
// interfaces are intentionally small and transport-agnostic so engines can be
// backed by native libraries or remote APIs without leaking provider-specific
// concerns into callers.
