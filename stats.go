package xlitfix

import "sync/atomic"

// Stats is a snapshot of a Replacer's counters.
type Stats struct {
	Batches            int64 // ReplaceBatch and RepairBatch calls
	Sentences          int64 // Sentences processed
	DesyncRetries      int64 // Batches redone sentence by sentence
	AlignmentDrift     int64 // Repairs where token counts differed
	RepairFailures     int64 // Repairs abandoned; sentence left as-is
	AutomatonFallbacks int64 // Replacements served by the boundary regex
	MissingWords       int64 // Source-script words left unresolved
}

type counters struct {
	batches        atomic.Int64
	sentences      atomic.Int64
	desyncRetries  atomic.Int64
	alignmentDrift atomic.Int64
	repairFailures atomic.Int64
	missingWords   atomic.Int64
}

// Stats returns a snapshot of the replacer's counters.
func (r *Replacer) Stats() Stats {
	return Stats{
		Batches:            r.stats.batches.Load(),
		Sentences:          r.stats.sentences.Load(),
		DesyncRetries:      r.stats.desyncRetries.Load(),
		AlignmentDrift:     r.stats.alignmentDrift.Load(),
		RepairFailures:     r.stats.repairFailures.Load(),
		AutomatonFallbacks: r.index.Fallbacks(),
		MissingWords:       r.stats.missingWords.Load(),
	}
}
