package failure

type Severity int

// cache control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// ClassifiedError is the error contract shared by storage-facing packages.
// Severity describes the failed operation, not the health of the store.
type ClassifiedError interface {
	error
	Severity() Severity
}
