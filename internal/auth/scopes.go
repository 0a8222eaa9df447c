package auth

// Known OAuth scopes used by the report service.
const (
	ScopeReportsRead   = "reports:read"
	ScopeReportsExport = "reports:export"
)
