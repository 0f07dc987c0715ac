package output

// Output formats. Keep in sync with config.Format*.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// TSVHeader is the canonical header row for text/TSV outputs.
// Keep this as the single source of truth; all writers should use it.
const TSVHeader = "pair_id\tseq1_id\tseq2_id\tlen1\tlen2\tscore_type\tviterbi\tforward\tbackward\treachable\tcached"
