package scenarios

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/components"
	"github.com/askiada/go-jobopts/pkg/units"
)

// PileUpConfig holds the beam spot and pile-up multiplicity of one collider phase.
type PileUpConfig struct {
	Name            string
	Gauss           components.GaussSmearVertex
	Flat            components.FlatSmearVertex
	NumPileUpEvents int
	// TVertexMin and TVertexMax bound the time spread; the flat tool has no time axis.
	TVertexMin units.Quantity
	TVertexMax units.Quantity
}

// commonFCCBeam is shared by all FCC-hh phases (Benedikt, Schulte, Zimmermann, PRSTAB 18, 101002).
func commonFCCBeam() components.GaussSmearVertex {
	return components.GaussSmearVertex{
		XVertexMean:  units.New(0, units.Millimeter),
		XVertexSigma: units.New(0.5, units.Millimeter),
		YVertexMean:  units.New(0, units.Millimeter),
		YVertexSigma: units.New(0.5, units.Millimeter),
		ZVertexMean:  units.New(0, units.Millimeter),
		ZVertexSigma: units.New(40, units.Millimeter),
		TVertexMean:  units.New(0, units.Picosecond),
		TVertexSigma: units.New(180, units.Picosecond),
	}
}

func newPileUpConfig(name string, numPileUp int) (PileUpConfig, error) {
	gauss := commonFCCBeam()

	flat, err := components.FlatFromGauss(&gauss)
	if err != nil {
		return PileUpConfig{}, errors.Wrapf(err, "unable to derive flat smearing for %s", name)
	}

	width := gauss.TVertexSigma.Scale(2)

	tMin, err := gauss.TVertexMean.Sub(width)
	if err != nil {
		return PileUpConfig{}, err
	}

	tMax, err := gauss.TVertexMean.Add(width)
	if err != nil {
		return PileUpConfig{}, err
	}

	return PileUpConfig{
		Name:            name,
		Gauss:           gauss,
		Flat:            *flat,
		NumPileUpEvents: numPileUp,
		TVertexMin:      tMin,
		TVertexMax:      tMax,
	}, nil
}

// FCCPhase1PileUp is the FCC-hh phase 1 scenario with 180 pile-up events.
func FCCPhase1PileUp() PileUpConfig {
	c, err := newPileUpConfig("FCCPhase1", 180)
	if err != nil {
		panic(err)
	}

	return c
}

// FCCPhase2PileUp is the FCC-hh phase 2 scenario with 1020 pile-up events.
func FCCPhase2PileUp() PileUpConfig {
	c, err := newPileUpConfig("FCCPhase2", 1020)
	if err != nil {
		panic(err)
	}

	return c
}

// PileUpConfigs lists the known phases.
func PileUpConfigs() []PileUpConfig {
	return []PileUpConfig{FCCPhase1PileUp(), FCCPhase2PileUp()}
}
