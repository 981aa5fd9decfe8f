package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs table: one row per pipeline invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    pdf_dir TEXT NOT NULL,
    xml_dir TEXT NOT NULL,
    output_dir TEXT NOT NULL,
    service_url TEXT NOT NULL,
    workers INTEGER NOT NULL,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,
    total_seconds REAL
);

-- Job results: one row per document per phase
CREATE TABLE IF NOT EXISTS job_results (
    result_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    phase TEXT NOT NULL,          -- extract, redact
    item_name TEXT NOT NULL,
    success BOOLEAN NOT NULL,
    message TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_job_results_run ON job_results(run_id);
CREATE INDEX IF NOT EXISTS idx_job_results_success ON job_results(success) WHERE success = 0;
`
