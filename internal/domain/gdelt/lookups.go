package gdelt

import "strings"

const UnknownLabel = "Unknown"

// CAMEO top-level event categories keyed by zero-padded root code.
var eventRootCodes = [...]struct {
	Code  string
	Label string
}{
	{"01", "MAKE PUBLIC STATEMENT"},
	{"02", "APPEAL"},
	{"03", "EXPRESS INTENT TO COOPERATE"},
	{"04", "CONSULT"},
	{"05", "ENGAGE IN DIPLOMATIC COOPERATION"},
	{"06", "ENGAGE IN MATERIAL COOPERATION"},
	{"07", "PROVIDE AID"},
	{"08", "YIELD"},
	{"09", "INVESTIGATE"},
	{"10", "DEMAND"},
	{"11", "DISAPPROVE"},
	{"12", "REJECT"},
	{"13", "THREATEN"},
	{"14", "PROTEST"},
	{"15", "EXHIBIT MILITARY POSTURE"},
	{"16", "REDUCE RELATIONS"},
	{"17", "COERCE"},
	{"18", "ASSAULT"},
	{"19", "FIGHT"},
	{"20", "USE UNCONVENTIONAL MASS VIOLENCE"},
}

var quadClasses = [...]string{
	1: "Verbal Cooperation",
	2: "Material Cooperation",
	3: "Verbal Conflict",
	4: "Material Conflict",
}

var commonCountries = [...]struct {
	Code string
	Name string
}{
	{"USA", "United States"},
	{"GBR", "United Kingdom"},
	{"FRA", "France"},
	{"DEU", "Germany"},
	{"CHN", "China"},
	{"RUS", "Russia"},
	{"JPN", "Japan"},
	{"IND", "India"},
	{"BRA", "Brazil"},
	{"CAN", "Canada"},
	{"AUS", "Australia"},
	{"ZAF", "South Africa"},
	{"SAU", "Saudi Arabia"},
	{"IRN", "Iran"},
	{"ISR", "Israel"},
	{"UKR", "Ukraine"},
	{"PAK", "Pakistan"},
	{"KOR", "South Korea"},
	{"MEX", "Mexico"},
	{"TUR", "Turkey"},
}

var (
	eventRootIndex = func() map[string]string {
		m := make(map[string]string, len(eventRootCodes))
		for _, e := range eventRootCodes {
			m[e.Code] = e.Label
		}
		return m
	}()
	countryIndex = func() map[string]string {
		m := make(map[string]string, len(commonCountries))
		for _, c := range commonCountries {
			m[c.Code] = c.Name
		}
		return m
	}()
)

// EventRootDescription looks up a zero-padded root code ("01".."20").
func EventRootDescription(key string) string {
	if label, ok := eventRootIndex[key]; ok {
		return label
	}
	return UnknownLabel
}

func QuadClassDescription(class int64) string {
	if class < 1 || class >= int64(len(quadClasses)) {
		return UnknownLabel
	}
	return quadClasses[class]
}

func CountryName(code string) (string, bool) {
	name, ok := countryIndex[code]
	return name, ok
}

// CountryDisplayName falls back to the code itself for countries outside the
// table, and to "Unknown" when there is no code at all.
func CountryDisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return UnknownLabel
	}
	if name, ok := countryIndex[code]; ok {
		return name
	}
	return code
}

func EventRootLabels() []string {
	out := make([]string, 0, len(eventRootCodes))
	for _, e := range eventRootCodes {
		out = append(out, e.Label)
	}
	return out
}

func QuadClassLabels() []string {
	out := make([]string, 0, len(quadClasses)-1)
	for _, l := range quadClasses[1:] {
		out = append(out, l)
	}
	return out
}
