package models

// Component is one part of an applicant's aggregate.
type Component string

const (
	ComponentMatric Component = "matric"
	ComponentFSc    Component = "fsc"
	ComponentTest   Component = "test"
)

// Components lists aggregate components in evaluation order.
var Components = []Component{ComponentMatric, ComponentFSc, ComponentTest}

// TestName identifies a standardized admission test.
type TestName string

const (
	TestNone    TestName = ""
	TestNTS     TestName = "NTS"
	TestNET     TestName = "NET"
	TestECAT    TestName = "ECAT"
	TestNEDTest TestName = "NED Entry Test"
	TestSAT     TestName = "SAT"
)

// HistoryKind says where a university's cutoff history lives.
type HistoryKind string

const (
	HistoryNone       HistoryKind = ""
	HistoryInline     HistoryKind = "inline"
	HistoryFile       HistoryKind = "file"
	HistoryClickHouse HistoryKind = "clickhouse"
)

// Columns names the fields of a historical row. Year may be empty.
type Columns struct {
	Program string
	Year    string
	Cutoff  string
}

// HistoryRef locates a university's historical table.
type HistoryRef struct {
	Kind    HistoryKind
	Path    string
	Sheet   string
	Columns Columns
	Rows    []Row
}

// UniversityProfile is static per-university configuration. Profiles are built
// once at startup and shared read-only; callers must not mutate the maps.
type UniversityProfile struct {
	ID           string
	DisplayName  string
	Weights      map[Component]float64
	Totals       map[Component]float64
	RequiredTest TestName
	History      HistoryRef
}

// HasHistory reports whether any historical source is configured.
func (p *UniversityProfile) HasHistory() bool {
	return p.History.Kind != HistoryNone
}

// TotalsCopy returns a request-scoped copy of the totals.
func (p *UniversityProfile) TotalsCopy() map[Component]float64 {
	out := make(map[Component]float64, len(p.Totals))
	for k, v := range p.Totals {
		out[k] = v
	}
	return out
}

// Criteria is the scoring scheme echoed with every result row.
type Criteria struct {
	Weights  map[Component]float64 `json:"weights"`
	Totals   map[Component]float64 `json:"totals"`
	TestUsed *string               `json:"test_used"`
}

// NewCriteria builds the echoed scheme for p with the given effective totals.
func NewCriteria(p *UniversityProfile, totals map[Component]float64) Criteria {
	weights := make(map[Component]float64, len(p.Weights))
	for k, v := range p.Weights {
		weights[k] = v
	}
	c := Criteria{Weights: weights, Totals: totals}
	if p.RequiredTest != TestNone {
		t := string(p.RequiredTest)
		c.TestUsed = &t
	}
	return c
}

// UniversitySummary is the public view of a profile.
type UniversitySummary struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Criteria   Criteria `json:"criteria"`
	HasHistory bool     `json:"has_history"`
}
