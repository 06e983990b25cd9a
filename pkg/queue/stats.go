package queue

// Stats is a point-in-time snapshot of the engine.
type Stats struct {
	Total      int  `json:"total"`
	Pending    int  `json:"pending"`
	Processing int  `json:"processing"`
	Completed  int  `json:"completed"`
	Failed     int  `json:"failed"`
	Retrying   int  `json:"retrying"`
	InFlight   int  `json:"in_flight"`
	Running    bool `json:"running"`
}

// Stats returns a snapshot of job counts and dispatcher state.
func (e *Engine) Stats() Stats {
	counts := e.store.Counts()
	total := 0
	for _, n := range counts {
		total += n
	}

	return Stats{
		Total:      total,
		Pending:    counts[StatusPending],
		Processing: counts[StatusProcessing],
		Completed:  counts[StatusCompleted],
		Failed:     counts[StatusFailed],
		Retrying:   counts[StatusRetrying],
		InFlight:   e.inFlightCount(),
		Running:    e.Running(),
	}
}
