package permit

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyArea(t *testing.T) {
	tests := []struct {
		input any
		want  Area
	}{
		{"NCU", AreaNCU},
		{"ccr building", AreaNCU},
		{"NCU POWER PLANT", AreaNCU}, // rule 1 beats rule 6
		{"NCAU UNIT 2", AreaNCAU},
		{"IOP ECR", AreaIOPECR},
		{"  iop ncr  ", AreaIOPNCR},
		{"IOP SCR TANK FARM", AreaIOPSCR},
		{"CPP", AreaCPP},
		{"Captive Power Plant", AreaCPP},
		{"HDPE PLANT", AreaHDPE},
		{"LLDPE", AreaLLDPE},
		{"IOP BAGGING", AreaIOPBagging},
		{"BAGGING LINE 3", AreaIOPBagging},
		{"ADMINISTRATION BUILDING", AreaOthers},
		{"HPL", AreaOthers},
		{"LOGISTICS SAFETY OFFICE", AreaOthers}, // OTHERS rule shadows HSEF
		{"OSBL", AreaOthers},
		{"HSEF", AreaHSEF},
		{"Fire Station", AreaHSEF},
		{"SAFETY", AreaHSEF},
		{"PP EXTRUSION", AreaOthers},
		{"", AreaOthers},
		{nil, AreaOthers},
		{42.0, AreaOthers},
		{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), AreaOthers},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyArea(tt.input), "ClassifyArea(%#v)", tt.input)
	}
}

func TestClassifyAreaFirstMatchWins(t *testing.T) {
	// Each rule keyword classifies to the first rule with a keyword it
	// contains, which is its own rule unless an earlier one shadows it.
	for _, rule := range areaRules {
		for _, kw := range rule.keywords {
			want := AreaOthers
		search:
			for _, r := range areaRules {
				for _, k := range r.keywords {
					if strings.Contains(kw, k) {
						want = r.area
						break search
					}
				}
			}
			assert.Equal(t, want, ClassifyArea(kw), "keyword %q", kw)
			assert.Equal(t, want, ClassifyArea(strings.ToLower(kw)), "keyword %q", kw)
		}
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		input any
		want  Status
	}{
		{"PENDING CLOSURE", StatusPendingClosure},
		{"pending closure", StatusPendingClosure},
		{" expired ", StatusExpired},
		{"Expired", StatusExpired},
		{"PENDING CLOSURE EXTRA", StatusNone},
		{"NOT EXPIRED", StatusNone},
		{"CLOSED", StatusNone},
		{"Active", StatusNone},
		{"", StatusNone},
		{nil, StatusNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyStatus(tt.input), "ClassifyStatus(%#v)", tt.input)
	}
}

func TestIsClosed(t *testing.T) {
	tests := []struct {
		input any
		want  bool
	}{
		{"CLOSED", true},
		{"Closed", true},
		{"  closed ", true},
		{"CLOSED OUT", false},
		{"NOT CLOSED", false},
		{"EXPIRED", false},
		{nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsClosed(tt.input), "IsClosed(%#v)", tt.input)
	}
}
