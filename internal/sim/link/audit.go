package link

// Audit actions.
const (
	AuditSelect    = "SELECT"
	AuditLink      = "LINK"
	AuditStale     = "STALE"
	AuditHighlight = "HIGHLIGHT"
	AuditCleared   = "CLEARED"
)

type AuditEntry struct {
	Tick     uint64     `json:"tick"`
	Action   string     `json:"action"`
	Operator string     `json:"operator,omitempty"`
	Agent    string     `json:"agent"`
	Anchor   string     `json:"anchor,omitempty"`
	World    string     `json:"world,omitempty"`
	Pos      [3]float64 `json:"pos"`
	Reason   string     `json:"reason,omitempty"`
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

// MultiAudit fans entries out to every non-nil logger and returns the first error.
type MultiAudit []AuditLogger

func (m MultiAudit) WriteAudit(entry AuditEntry) error {
	var first error
	for _, l := range m {
		if l == nil {
			continue
		}
		if err := l.WriteAudit(entry); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PointPos flattens a point into the audit position triple.
func PointPos(p Point) [3]float64 { return [3]float64{p.X, p.Y, p.Z} }
