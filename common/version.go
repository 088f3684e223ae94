package common

import "github.com/nspcc-dev/neo-go/pkg/interop/native/std"

const (
	major = 0
	minor = 1
	patch = 0

	// Lowest version an update can be performed from. Storage layout of
	// older ledgers is not migrated.
	prevMajor = 0
	prevMinor = 1
	prevPatch = 0

	// Version is the current contract version, encoded as
	// major*1_000_000 + minor*1_000 + patch. It must match the VERSION file.
	Version = major*1_000_000 + minor*1_000 + patch

	// PrevVersion is the oldest version accepted by CheckVersion.
	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch

	// ErrVersionMismatch is thrown by CheckVersion when the deployed contract
	// is too old to be updated in place.
	ErrVersionMismatch = "previous version mismatch"

	// ErrAlreadyUpdated is thrown by CheckVersion when the deployed contract
	// already has the current version.
	ErrAlreadyUpdated = "contract is already of the latest version"
)

// CheckVersion panics unless a contract of version from can be updated to
// the current Version.
func CheckVersion(from int) {
	if from < PrevVersion {
		panic(ErrVersionMismatch + ": expected >=" + std.Itoa(PrevVersion, 10))
	}
	if from >= Version {
		panic(ErrAlreadyUpdated + ": " + std.Itoa(Version, 10))
	}
}

// AppendVersion appends the version of the running contract to the update
// data, so that _deploy of the new code can call CheckVersion.
func AppendVersion(data any) []any {
	if data == nil {
		return []any{Version}
	}
	return append(data.([]any), Version)
}
