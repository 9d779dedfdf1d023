package service

// BuildState describes the outcome of a target build iteration.
type BuildState int

const (
	BuildStateSuccess BuildState = iota
	BuildStateConfigError
	BuildStateBundlerFailed
	BuildStateUploadFailed
	BuildStateInternalError
)

func (s BuildState) String() string {
	switch s {
	case BuildStateSuccess:
		return "success"
	case BuildStateConfigError:
		return "config_error"
	case BuildStateBundlerFailed:
		return "bundler_failed"
	case BuildStateUploadFailed:
		return "upload_failed"
	default:
		return "internal_error"
	}
}

// Status is the last observed state of a target worker.
type Status struct {
	State   BuildState
	Message string
}
