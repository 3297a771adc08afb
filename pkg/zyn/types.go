package zyn

import (
	"github.com/zynbuild/zyn/internal/engine"
	"github.com/zynbuild/zyn/internal/lock"
	"github.com/zynbuild/zyn/internal/project"
)

// Type aliases re-export the internal result types as the public API.

type InstallResult = engine.Result
type DependencyResult = engine.DependencyResult
type DependencyError = engine.DependencyError
type DependencyStatus = engine.DependencyStatus
type State = engine.State
type VerifyResult = engine.VerifyReport
type Verification = lock.Verification
type MismatchError = lock.MismatchError
type BuildOptions = project.BuildOptions
type BuildResult = project.BuildResult

const (
	UpToDate = engine.UpToDate
	Built    = engine.Built
	Aborted  = engine.Aborted
)
