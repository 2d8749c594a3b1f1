package scenarios

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/components"
	"github.com/askiada/go-jobopts/pkg/envpath"
	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
	"github.com/askiada/go-jobopts/pkg/units"
)

// MDITestParticles is the sample read by MDIReaderTest, relative to K4GEN.
const MDITestParticles = "../options/mdireader_testparticles.dat"

// FCCDetectors names the variable pointing at the detector descriptions.
const FCCDetectors = "FCCDETECTORS"

// BaselineDetector is the compact description used by Simulation, relative to FCCDETECTORS.
const BaselineDetector = "Detector/DetFCChhBaseline1/compact/FCChh_DectEmptyMaster.xml"

func init() {
	register(Scenario{
		Name:  "mdiReaderTest",
		Doc:   "reads one event of xtrack beam background particles and writes it with podio",
		Build: MDIReaderTest,
	})
	register(Scenario{
		Name:  "simulation",
		Doc:   "momentum range gun in front of the geometry and Geant4 services",
		Build: Simulation,
	})
}

// MDIReaderTest reads the xtrack test sample. K4GEN must be set.
func MDIReaderTest(lookup envpath.LookupFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return assemble(pipeline.WithRunParameters(1, pipeline.DefaultEvtSel, model.Info), opts, func(p *pipeline.Pipeline) error {
		file, err := envpath.Resolve(K4Gen, MDITestParticles, envpath.WithLookup(lookup))
		if err != nil {
			return errors.Wrap(err, "unable to locate MDI sample")
		}

		data, err := components.FCCDataSvc().Build(components.EventDataSvc)
		if err != nil {
			return err
		}

		err = p.AddService(data)
		if err != nil {
			return err
		}

		reader, err := (&components.MDIReader{
			MDIFilename:     file,
			CrossingAngle:   0.015,
			LongitudinalCut: 0,
			InputType:       components.MDIXtrack,
			BeamEnergy:      45.6,
		}).Build("Reader")
		if err != nil {
			return err
		}

		err = reader.SetPath("GenParticles", "allGenParticles")
		if err != nil {
			return err
		}

		out, err := podioOutput("mdireader_test_out.root", model.Info)
		if err != nil {
			return err
		}

		return addStages(p, reader, out)
	})
}

// Simulation prepares a Geant4 job: GeoSvc is registered before SimG4Svc, which needs it.
func Simulation(lookup envpath.LookupFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return assemble(pipeline.WithRunParameters(1, pipeline.DefaultEvtSel, model.Info), opts, func(p *pipeline.Pipeline) error {
		detector, err := envpath.Resolve(FCCDetectors, BaselineDetector, envpath.WithLookup(lookup), envpath.WithDefault(""))
		if err != nil {
			return err
		}

		data, err := components.FCCDataSvc().Build(components.EventDataSvc)
		if err != nil {
			return err
		}

		geo, err := (&components.GeoSvc{Detectors: []string{detector}}).Build("")
		if err != nil {
			return err
		}

		sim, err := (&components.SimG4Svc{}).Build("")
		if err != nil {
			return err
		}

		for _, svc := range []*pipeline.Descriptor{data, geo, sim} {
			err = p.AddService(svc)
			if err != nil {
				return err
			}
		}

		gun, err := (&components.MomentumRangeParticleGun{
			PdgCodes:    []int{11},
			MomentumMin: units.New(10, units.GeV),
			MomentumMax: units.New(100, units.GeV),
		}).Build("")
		if err != nil {
			return err
		}

		gen, err := (&components.GenAlg{SignalProvider: gun}).Build("ParticleGun")
		if err != nil {
			return err
		}

		conv, err := (&components.HepMCToEDMConverter{}).Build("")
		if err != nil {
			return err
		}

		out, err := podioOutput("output_simulation.root", 0)
		if err != nil {
			return err
		}

		err = link(linkSpec{path: "hepmc", from: gen, to: conv})
		if err != nil {
			return err
		}

		return addStages(p, gen, conv, out)
	})
}
