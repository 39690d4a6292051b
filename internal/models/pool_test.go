package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanFunc_Label(t *testing.T) {
	tests := []struct {
		name     string
		fn       ScanFunc
		expected string
	}{
		{name: "none", fn: ScanFuncNone, expected: "none_requested"},
		{name: "scrub", fn: ScanFuncScrub, expected: "scrub"},
		{name: "resilver", fn: ScanFuncResilver, expected: "resilver"},
		{name: "rebuild", fn: ScanFuncRebuild, expected: "rebuild"},
		{name: "unlabeled value falls back to scan", fn: ScanFunc(99), expected: "scan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fn.Label())
		})
	}
}

func TestScanState_Label(t *testing.T) {
	assert.Equal(t, "none", ScanStateNone.Label())
	assert.Equal(t, "scanning", ScanStateScanning.Label())
	assert.Equal(t, "finished", ScanStateFinished.Label())
	assert.Equal(t, "canceled", ScanStateCanceled.Label())
}

func TestScanEnums_Known(t *testing.T) {
	assert.True(t, ScanFuncScrub.Known())
	assert.True(t, ScanStateCanceled.Known())
	assert.False(t, ScanFunc(4).Known())
	assert.False(t, ScanState(4).Known())
	assert.False(t, ScanFunc(^uint64(0)).Known())
}
