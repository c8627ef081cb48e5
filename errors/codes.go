// Package errors provides the error taxonomy of the release pipeline.
// Every error carries a string code so callers and tests can classify a failure
// without matching on message text. All codes are terminal: the pipeline never
// retries or recovers from any of them.
package errors

// ErrorCode represents a specific failure condition of a release run.
// Error codes are string-based for debuggability and readable log output.
type ErrorCode string

const (
	// Precondition errors.

	// CodeManifestUnreadable indicates the manifest is missing, malformed, or lacks a version.
	CodeManifestUnreadable ErrorCode = "MANIFEST_UNREADABLE"

	// CodeNotARepository indicates no version-control repository context exists.
	CodeNotARepository ErrorCode = "NOT_A_VCS_REPOSITORY"

	// CodeProtectedBranch indicates a release was attempted from a trunk branch.
	CodeProtectedBranch ErrorCode = "PROTECTED_BRANCH_RELEASE"

	// CodeDirtyWorkingTree indicates uncommitted or untracked files are present.
	CodeDirtyWorkingTree ErrorCode = "DIRTY_WORKING_TREE"

	// Execution errors.

	// CodeStepFailed indicates an external command exited non-zero or could not start.
	CodeStepFailed ErrorCode = "STEP_EXECUTION_FAILED"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the run.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// System errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
