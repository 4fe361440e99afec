package store

const (
	insertJob = `
		INSERT INTO jobs (id, user_id, document_name, document_path, paper_type, print_quality, color_mode, paper_size, status, device_token, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	getJobByID = `
		SELECT id, user_id, document_name, document_path, paper_type, print_quality, color_mode, paper_size, status, device_token, submitted_at, completed_at
		FROM jobs WHERE id = ?
	`

	listJobsByUser = `
		SELECT id, user_id, document_name, document_path, paper_type, print_quality, color_mode, paper_size, status, device_token, submitted_at, completed_at
		FROM jobs WHERE user_id = ? ORDER BY submitted_at DESC
	`

	updateJobStatus = `
		UPDATE jobs SET status = ? WHERE id = ?
	`

	setJobDeviceToken = `
		UPDATE jobs SET device_token = ? WHERE id = ?
	`

	markJobCompleted = `
		UPDATE jobs SET status = ?, completed_at = ? WHERE id = ?
	`

	deleteJob = `DELETE FROM jobs WHERE id = ?`

	deleteJobsSubmittedBefore = `DELETE FROM jobs WHERE submitted_at < ?`
)

const (
	insertUser = `
		INSERT INTO users (username, password_hash) VALUES (?, ?)
	`

	getUserByID = `
		SELECT id, username, password_hash, created_at FROM users WHERE id = ?
	`

	getUserByUsername = `
		SELECT id, username, password_hash, created_at FROM users WHERE username = ?
	`
)
