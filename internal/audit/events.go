package audit

const (
	EventArchiveInspect  = "archive.inspect"
	EventArchiveRejected = "archive.rejected"
)

const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

func severityFor(event AuditEvent) string {
	if event.EventType == EventArchiveRejected || !event.Success {
		return SeverityWarning
	}
	return SeverityInfo
}
