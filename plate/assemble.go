package plate

import "errors"

// ErrNoPlateDetected reports that the pipeline completed but could not
// extract a single field. Callers are expected to offer manual entry as the
// escape hatch and suggest a retake (lighting, distance, angle).
var ErrNoPlateDetected = errors.New("plate: no plate detected")

// Assemble combines the parser output into the final record, deriving
// FullText. It never returns a record with all four fields empty; that case
// is reported as ErrNoPlateDetected instead. Inputs are not mutated.
func Assemble(rec *Record) (Record, error) {
	if rec == nil || rec.Empty() {
		return Record{}, ErrNoPlateDetected
	}
	out := *rec
	out.FullText = out.join()
	return out, nil
}
