package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Score is a raw mark. It accepts a JSON number or a numeric string.
type Score float64

func (s *Score) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		raw = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("score %s is not a number", string(b))
	}
	*s = Score(f)
	return nil
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	MatricMarks  *Score      `json:"matric_marks" validate:"required,gte=0"`
	FscMarks     *Score      `json:"fsc_marks" validate:"required,gte=0"`
	NTSMarks     *Score      `json:"nts_marks" validate:"omitempty,gte=0"`
	NETMarks     *Score      `json:"net_marks" validate:"omitempty,gte=0"`
	ECATMarks    *Score      `json:"ecat_marks" validate:"omitempty,gte=0"`
	NEDTestMarks *Score      `json:"ned_test_marks" validate:"omitempty,gte=0"`
	SATMarks     *Score      `json:"sat_marks" validate:"omitempty,gte=0"`
	Program      *string     `json:"program" validate:"required"`
	IsOALevel    bool        `json:"is_o_a_level"`
	BachelorCGPA interface{} `json:"bachelors_cgpa"`
	MasterCGPA   interface{} `json:"masters_cgpa"`
}

// ApplicantInput is a validated request in domain form.
type ApplicantInput struct {
	Matric        float64
	FSc           float64
	Tests         map[TestName]float64
	Program       string
	OLevel        bool
	BachelorsCGPA interface{}
	MastersCGPA   interface{}
}

// ToInput converts a validated request. Required fields must be non-nil.
func (r *PredictRequest) ToInput() ApplicantInput {
	in := ApplicantInput{
		Matric:        float64(*r.MatricMarks),
		FSc:           float64(*r.FscMarks),
		Tests:         make(map[TestName]float64, 5),
		Program:       *r.Program,
		OLevel:        r.IsOALevel,
		BachelorsCGPA: r.BachelorCGPA,
		MastersCGPA:   r.MasterCGPA,
	}
	for name, s := range map[TestName]*Score{
		TestNTS:     r.NTSMarks,
		TestNET:     r.NETMarks,
		TestECAT:    r.ECATMarks,
		TestNEDTest: r.NEDTestMarks,
		TestSAT:     r.SATMarks,
	} {
		if s != nil {
			in.Tests[name] = float64(*s)
		}
	}
	return in
}

// TestScore returns the applicant's score for t, if supplied.
func (a *ApplicantInput) TestScore(t TestName) (float64, bool) {
	v, ok := a.Tests[t]
	return v, ok
}

// IsGraduate reports whether a bachelors or masters CGPA was supplied.
func (a *ApplicantInput) IsGraduate() bool {
	return a.BachelorsCGPA != nil || a.MastersCGPA != nil
}

// UserData echoes a graduate application's submitted values.
type UserData struct {
	MatricMarks   float64     `json:"matric_marks"`
	FscMarks      float64     `json:"fsc_marks"`
	NTSMarks      *float64    `json:"nts_marks"`
	NETMarks      *float64    `json:"net_marks"`
	NEDTestMarks  *float64    `json:"ned_test_marks"`
	ECATMarks     *float64    `json:"ecat_marks"`
	SATMarks      *float64    `json:"sat_marks"`
	Program       string      `json:"program"`
	IsOALevel     bool        `json:"is_o_a_level"`
	BachelorsCGPA interface{} `json:"bachelors_cgpa"`
	MastersCGPA   interface{} `json:"masters_cgpa"`
}

// NewUserData builds the echo block for a.
func NewUserData(a *ApplicantInput) *UserData {
	score := func(t TestName) *float64 {
		if v, ok := a.Tests[t]; ok {
			return &v
		}
		return nil
	}
	return &UserData{
		MatricMarks:   a.Matric,
		FscMarks:      a.FSc,
		NTSMarks:      score(TestNTS),
		NETMarks:      score(TestNET),
		NEDTestMarks:  score(TestNEDTest),
		ECATMarks:     score(TestECAT),
		SATMarks:      score(TestSAT),
		Program:       a.Program,
		IsOALevel:     a.OLevel,
		BachelorsCGPA: a.BachelorsCGPA,
		MastersCGPA:   a.MastersCGPA,
	}
}
