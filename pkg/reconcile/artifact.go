// pkg/reconcile/artifact.go

package reconcile

import "os"

// Kind names the class of managed artifact, for logging and reporting.
type Kind string

const (
	KindBinary     Kind = "binary"
	KindConfigFile Kind = "config-file"
	KindUnitFile   Kind = "unit-file"
	KindTimerFile  Kind = "timer-file"
	KindPolicyFile Kind = "policy-file"
)

// Artifact identifies one managed file on the host. Instances are built
// fresh each run; all state lives on disk.
type Artifact struct {
	Path string
	Kind Kind
	Mode os.FileMode
}

func (a Artifact) mode() os.FileMode {
	if a.Mode == 0 {
		return 0o644
	}
	return a.Mode
}

// Op is the outcome class of one reconcile pass.
type Op string

const (
	OpUnchanged Op = "unchanged"
	OpUpdated   Op = "updated"
	OpCreated   Op = "created"
)

// Result reports what a reconcile pass did. BackupPath is set only when a
// pre-existing artifact was overwritten.
type Result struct {
	Op         Op
	BackupPath string
}

// Changed reports whether the pass wrote anything.
func (r Result) Changed() bool { return r.Op != OpUnchanged }
