package store

// Run queries
const (
	queryInsertRun = `
		INSERT INTO runs (id, scenario, module, checkpoint, params, verdict, reason, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			verdict = EXCLUDED.verdict,
			reason = EXCLUDED.reason,
			finished_at = EXCLUDED.finished_at`

	queryDeleteRun    = `DELETE FROM runs WHERE id = ?`
	queryDeleteRunLog = `DELETE FROM run_log WHERE run_id = ?`
)

// Log queries
const (
	queryInsertLogEntry = `
		INSERT INTO run_log (run_id, seq, kind, text, exit_status, passed, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryListLogEntries = `
		SELECT run_id, seq, kind, text, exit_status, passed, logged_at
		FROM run_log WHERE run_id = ? ORDER BY seq`
)

var runColumns = []string{
	"id", "scenario", "module", "checkpoint", "params", "verdict", "reason", "started_at", "finished_at",
}
