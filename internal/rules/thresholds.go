package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/wonny/loancore/internal/contracts"
)

//go:embed thresholds.yaml
var defaultThresholdsYAML []byte

// PrimeThresholds are the prime-channel eligibility limits
type PrimeThresholds struct {
	A  float64 `yaml:"a"`
	B1 float64 `yaml:"b1"`
	B3 float64 `yaml:"b3"`
	C  float64 `yaml:"c"`
	D  float64 `yaml:"d"`
	E  float64 `yaml:"e"`
	F  float64 `yaml:"f"`
	G  float64 `yaml:"g"`
	H1 float64 `yaml:"h1"`
	H2 float64 `yaml:"h2"`
	H3 float64 `yaml:"h3"`
	I1 float64 `yaml:"i1"`
	I2 float64 `yaml:"i2"`
	L1 float64 `yaml:"l1"`
	L2 float64 `yaml:"l2"`
	L3 float64 `yaml:"l3"`
	S1 float64 `yaml:"s1"`
}

// SFYThresholds are the SFY-channel eligibility limits
type SFYThresholds struct {
	A1 float64 `yaml:"a1"`
	A2 float64 `yaml:"a2"`
	B1 float64 `yaml:"b1"`
	B2 float64 `yaml:"b2"`
	B3 float64 `yaml:"b3"`
	B4 float64 `yaml:"b4"`
	C1 float64 `yaml:"c1"`
	D1 float64 `yaml:"d1"`
	D2 float64 `yaml:"d2"`
	D3 float64 `yaml:"d3"`
	D4 float64 `yaml:"d4"`
	E1 float64 `yaml:"e1"`
	E2 float64 `yaml:"e2"`
	E3 float64 `yaml:"e3"`
	E4 float64 `yaml:"e4"`
	F1 float64 `yaml:"f1"`
	F2 float64 `yaml:"f2"`
	F3 float64 `yaml:"f3"`
	F4 float64 `yaml:"f4"`
	G1 float64 `yaml:"g1"`
	G2 float64 `yaml:"g2"`
	J1 float64 `yaml:"j1"`
	J2 float64 `yaml:"j2"`
	J3 float64 `yaml:"j3"`
	J4 float64 `yaml:"j4"`
	L1 float64 `yaml:"l1"`
	S1 float64 `yaml:"s1"`
}

// Thresholds bundles both channel batteries.
// ⭐ SSOT: 적격성 한도값은 thresholds.yaml에서만 관리
type Thresholds struct {
	Prime PrimeThresholds `yaml:"prime"`
	SFY   SFYThresholds   `yaml:"sfy"`
}

// LoadThresholds decodes a thresholds document. Unknown keys are
// rejected so a typo in an override file cannot silently fall back to
// zero limits.
func LoadThresholds(r io.Reader) (*Thresholds, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t Thresholds
	if err := dec.Decode(&t); err != nil {
		return nil, &contracts.RuleEvaluationError{Rule: "eligibility", Err: fmt.Errorf("decode thresholds: %w", err)}
	}
	return &t, nil
}

// DefaultThresholds returns the embedded limits
func DefaultThresholds() (*Thresholds, error) {
	return LoadThresholds(bytes.NewReader(defaultThresholdsYAML))
}
