package permit

import "strings"

// Area is a canonical plant/organizational zone.
type Area string

const (
	AreaNCU        Area = "NCU"
	AreaNCAU       Area = "NCAU"
	AreaIOPECR     Area = "IOP ECR"
	AreaIOPNCR     Area = "IOP NCR"
	AreaIOPSCR     Area = "IOP SCR"
	AreaCPP        Area = "CPP"
	AreaHDPE       Area = "HDPE"
	AreaLLDPE      Area = "LLDPE"
	AreaIOPBagging Area = "IOP BAGGING"
	AreaHSEF       Area = "HSEF"
	AreaOthers     Area = "OTHERS"
)

// Areas lists every value ClassifyArea can return.
var Areas = []Area{
	AreaNCU, AreaNCAU, AreaIOPECR, AreaIOPNCR, AreaIOPSCR, AreaCPP,
	AreaHDPE, AreaLLDPE, AreaIOPBagging, AreaHSEF, AreaOthers,
}

type areaRule struct {
	keywords []string
	area     Area
}

// areaRules is evaluated top to bottom and the first rule with any matching
// keyword wins. Order matters: keywords overlap ("NCU POWER PLANT" is NCU, not
// CPP), and the administrative OTHERS rule must shadow the HSEF rule so that
// e.g. "LOGISTICS SAFETY OFFICE" stays OTHERS.
var areaRules = []areaRule{
	{[]string{"CCR", "NCU"}, AreaNCU},
	{[]string{"NCAU"}, AreaNCAU},
	{[]string{"IOP ECR"}, AreaIOPECR},
	{[]string{"IOP NCR"}, AreaIOPNCR},
	{[]string{"IOP SCR"}, AreaIOPSCR},
	{[]string{"CPP", "POWER PLANT"}, AreaCPP},
	{[]string{"HDPE"}, AreaHDPE},
	{[]string{"LLDPE"}, AreaLLDPE},
	{[]string{"BAGGING"}, AreaIOPBagging},
	{[]string{"ADMINISTRATION", "HPL", "LOGISTICS", "OSBL"}, AreaOthers},
	{[]string{"HSEF", "FIRE", "SAFETY"}, AreaHSEF},
}

// ClassifyArea maps a free-text responsibility area to its canonical Area.
// It never fails: anything unmatched, including a missing value, is OTHERS.
func ClassifyArea(v any) Area {
	s := strings.ToUpper(strings.TrimSpace(text(v)))
	for _, rule := range areaRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.area
			}
		}
	}
	return AreaOthers
}
