package run

import (
	"errors"
	"testing"

	"gobanner/domain/banner"
	"gobanner/domain/core"
	"gobanner/domain/decision"
)

func TestRunFingerprint_Deterministic(t *testing.T) {
	datasetHash := core.Hash("test-dataset")
	settingsHash := core.Hash("test-settings")
	banners := []string{"REGION", "GENDER"}

	fp1 := NewRunFingerprint(datasetHash, settingsHash, banners, CodeVersion)
	fp2 := NewRunFingerprint(datasetHash, settingsHash, banners, CodeVersion)

	if fp1.Fingerprint != fp2.Fingerprint {
		t.Errorf("Fingerprints not identical: %s vs %s", fp1.Fingerprint, fp2.Fingerprint)
	}
	if fp1.DatasetHash != datasetHash {
		t.Errorf("DatasetHash mismatch: %s vs %s", fp1.DatasetHash, datasetHash)
	}
	if fp1.CodeVersion != CodeVersion {
		t.Errorf("CodeVersion mismatch: %s vs %s", fp1.CodeVersion, CodeVersion)
	}

	banners[0] = "CHANGED"
	if fp1.Banners[0] != "REGION" {
		t.Errorf("fingerprint must not alias the caller's banner slice")
	}
}

func TestRunFingerprint_Unique(t *testing.T) {
	base := NewRunFingerprint("d", "s", []string{"REGION"}, "1.0.0")

	testCases := []struct {
		name string
		fp   RunFingerprint
	}{
		{"different dataset", NewRunFingerprint("d2", "s", []string{"REGION"}, "1.0.0")},
		{"different settings", NewRunFingerprint("d", "s2", []string{"REGION"}, "1.0.0")},
		{"different banners", NewRunFingerprint("d", "s", []string{"GENDER"}, "1.0.0")},
		{"banner order", NewRunFingerprint("d", "s", []string{"REGION", "GENDER"}, "1.0.0")},
		{"different code", NewRunFingerprint("d", "s", []string{"REGION"}, "2.0.0")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.fp.Fingerprint == base.Fingerprint {
				t.Errorf("Fingerprint should be different for %s", tc.name)
			}
		})
	}
}

func TestRunLifecycle(t *testing.T) {
	r := NewRun(core.NewRunID(), "Tracker", NewRunFingerprint("d", "s", nil, CodeVersion), 10)

	if err := r.Validate(); err == nil {
		t.Errorf("suspended run without a pending decision should not validate")
	}

	r.Suspend(decision.NewPending(decision.KindBannerSelection, "Pick banners", nil))
	if err := r.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	r.Complete(banner.Table{}, nil, nil)
	if r.Status != StatusCompleted || r.Pending != nil {
		t.Errorf("expected completed run with no pending decision, got %s", r.Status)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	r.Fail(errors.New("boom"))
	if r.Status != StatusFailed || r.Error != "boom" {
		t.Errorf("expected failed run, got %s %q", r.Status, r.Error)
	}
}

func TestRunValidate_RequiresIdentity(t *testing.T) {
	r := &Run{Status: StatusFailed}
	if err := r.Validate(); err == nil {
		t.Errorf("run without id should not validate")
	}
	r.ID = core.NewRunID()
	if err := r.Validate(); err == nil {
		t.Errorf("run without dataset hash should not validate")
	}
}
