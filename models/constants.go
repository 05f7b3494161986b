package models

// ReportStatus is the lifecycle state of a report
type ReportStatus string

// Report statuses
const (
	StatusPending  ReportStatus = "Pending"
	StatusResolved ReportStatus = "Resolved"
)

// Storage backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// AdminCookieName is the cookie carrying the admin session token
const AdminCookieName = "admin_session"
