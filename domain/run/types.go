package run

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"gobanner/domain/core"
)

// Status is the lifecycle state of a run
type Status string

const (
	StatusSuspended Status = "suspended" // waiting for a decision
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// RunFingerprint ties a run to the exact inputs that produced it
type RunFingerprint struct {
	DatasetHash  core.Hash `json:"dataset_hash"`
	SettingsHash core.Hash `json:"settings_hash"`
	Banners      []string  `json:"banners"`
	CodeVersion  string    `json:"code_version"`
	Fingerprint  core.Hash `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from the run inputs
func NewRunFingerprint(datasetHash, settingsHash core.Hash, banners []string, codeVersion string) RunFingerprint {
	return RunFingerprint{
		DatasetHash:  datasetHash,
		SettingsHash: settingsHash,
		Banners:      append([]string(nil), banners...),
		CodeVersion:  codeVersion,
		Fingerprint:  computeRunFingerprint(datasetHash, settingsHash, banners, codeVersion),
	}
}

// computeRunFingerprint generates deterministic hash from all run inputs
func computeRunFingerprint(datasetHash, settingsHash core.Hash, banners []string, codeVersion string) core.Hash {
	data := fmt.Sprintf("dataset:%s|settings:%s|banners:%s|code:%s",
		datasetHash, settingsHash, strings.Join(banners, ","), codeVersion)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
