package plate

// Package plate decodes noisy OCR output into structured Japanese license
// plate records: a region name, a 1-3 digit classification code, a single
// syllabic character and a serial in the canonical "NN-NN" form. The
// normalizer and parser are pure functions so they can be unit-tested
// without any engine or network dependency; recognition itself lives in the
// ocr package.
