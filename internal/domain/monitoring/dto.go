package monitoring

// RunResult summarizes one monitor pass. Failed counts records whose
// processing hit an infrastructure error; the pass itself never aborts.
type RunResult struct {
	Processed int `json:"processed"`
	Reminded  int `json:"reminded"`
	Escalated int `json:"escalated"`
	Deferred  int `json:"deferred"`
	Failed    int `json:"failed"`
}

type SummaryResponse struct {
	Date                string `json:"date"`
	RemindedCount       int    `json:"reminded_count"`
	EscalatedCount      int    `json:"escalated_count"`
	AutoClockedOutCount int    `json:"auto_clocked_out_count"`
}
