package scenarios

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/components"
	"github.com/askiada/go-jobopts/pkg/envpath"
	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
	"github.com/askiada/go-jobopts/pkg/units"
)

// PythiaCard is the card used by the Pythia scenarios, looked up under K4GEN.
const PythiaCard = "Pythia_standard.cmd"

func init() {
	register(Scenario{
		Name:  "pythia",
		Doc:   "Pythia8 events with gaussian vertex smearing, converted, stable particles kept, written with podio",
		Build: Pythia,
	})
	register(Scenario{
		Name:  "pythiaEventsFiltered",
		Doc:   "Pythia8 events filtered by a compiled event rule",
		Build: PythiaEventsFiltered,
	})
	register(Scenario{
		Name:  "particleGun",
		Doc:   "constant pt pion gun with HepMC dump, file, histograms and podio output",
		Build: ParticleGun,
	})
	register(Scenario{
		Name:  "particleGunSmeared",
		Doc:   "particleGun with a flat vertex smearing attached to the generator",
		Build: ParticleGunSmeared,
	})

	for _, cfg := range PileUpConfigs() {
		cfg := cfg
		register(Scenario{
			Name: "pythiaPileUp" + cfg.Name,
			Doc:  "Pythia8 signal with Poisson pile-up from minimum bias, " + cfg.Name + " beam spot",
			Build: func(lookup envpath.LookupFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
				return PythiaPileUp(cfg, lookup, opts...)
			},
		})
	}
}

// fccBeamSmearing builds the gaussian smearing of the FCC-hh beam spot.
func fccBeamSmearing() (*pipeline.Descriptor, error) {
	gauss := commonFCCBeam()
	// the option scripts only set the sigmas
	gauss.XVertexMean, gauss.YVertexMean, gauss.ZVertexMean, gauss.TVertexMean = units.Quantity{}, units.Quantity{}, units.Quantity{}, units.Quantity{}

	return gauss.Build("")
}

func pythiaGenerator(lookup envpath.LookupFunc) (*pipeline.Descriptor, error) {
	card, err := envpath.Resolve(K4Gen, PythiaCard, envpath.WithLookup(lookup), envpath.WithDefault(""))
	if err != nil {
		return nil, errors.Wrap(err, "unable to locate pythia card")
	}

	signal, err := (&components.PythiaInterface{
		PythiaCard:            card,
		PrintPythiaStatistics: true,
		PythiaExtraSettings:   []string{""},
	}).Build("")
	if err != nil {
		return nil, err
	}

	smear, err := fccBeamSmearing()
	if err != nil {
		return nil, err
	}

	return (&components.GenAlg{SignalProvider: signal, VertexSmearingTool: smear}).Build("Pythia8")
}

// allStatusConverter converts particles of every status.
func allStatusConverter() (*pipeline.Descriptor, error) {
	return (&components.HepMCToEDMConverter{HepMCStatusList: []int{}}).Build("")
}

func podioOutput(filename string, level model.OutputLevel) (*pipeline.Descriptor, error) {
	return (&components.PodioOutput{
		Common:         components.Common{OutputLevel: level},
		Filename:       filename,
		OutputCommands: []string{"keep *"},
	}).Build("out")
}

func generationServices(p *pipeline.Pipeline) error {
	err := p.AddExternalService(RndmGenSvc)
	if err != nil {
		return err
	}

	data, err := components.K4DataSvc().Build(components.EventDataSvc)
	if err != nil {
		return err
	}

	return p.AddService(data)
}

// Pythia generates two Pythia8 events and keeps the stable particles.
func Pythia(lookup envpath.LookupFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return assemble(pipeline.WithRunParameters(2, pipeline.DefaultEvtSel, model.Info), opts, func(p *pipeline.Pipeline) error {
		err := generationServices(p)
		if err != nil {
			return err
		}

		gen, err := pythiaGenerator(lookup)
		if err != nil {
			return err
		}

		conv, err := allStatusConverter()
		if err != nil {
			return err
		}

		filter, err := (&components.GenParticleFilter{Accept: []int{1}}).Build("StableParticles")
		if err != nil {
			return err
		}

		out, err := podioOutput("", 0)
		if err != nil {
			return err
		}

		err = link(
			linkSpec{path: "hepmc", from: gen, to: conv},
			linkSpec{path: "GenParticles", from: conv, to: filter},
		)
		if err != nil {
			return err
		}

		err = filter.SetPath("GenParticlesFiltered", "GenParticlesStable")
		if err != nil {
			return err
		}

		return addStages(p, gen, conv, filter, out)
	})
}

// FilterRulePath is the rule file used by PythiaEventsFiltered.
const FilterRulePath = "k4Gen/options/filterRule.hxx"

// PythiaEventsFiltered generates Pythia8 events until twenty pass the event filter rule.
func PythiaEventsFiltered(lookup envpath.LookupFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return assemble(pipeline.WithRunParameters(20, pipeline.DefaultEvtSel, model.Info), opts, func(p *pipeline.Pipeline) error {
		err := generationServices(p)
		if err != nil {
			return err
		}

		gen, err := pythiaGenerator(lookup)
		if err != nil {
			return err
		}

		conv, err := allStatusConverter()
		if err != nil {
			return err
		}

		filter, err := (&components.GenEventFilter{
			Common:         components.Common{OutputLevel: model.Debug},
			FilterRulePath: FilterRulePath,
		}).Build("EventFilter")
		if err != nil {
			return err
		}

		out, err := podioOutput("", 0)
		if err != nil {
			return err
		}

		err = link(
			linkSpec{path: "hepmc", from: gen, to: conv},
			linkSpec{path: "GenParticles", from: conv, to: filter},
		)
		if err != nil {
			return err
		}

		return addStages(p, gen, conv, filter, out)
	})
}

// ParticleGun shoots one 50 MeV pion per event from the origin and writes it in every supported format.
func ParticleGun(_ envpath.LookupFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return particleGun(false, opts)
}

// ParticleGunSmeared is ParticleGun with the vertex spread flat over a 20x20x60 mm box.
func ParticleGunSmeared(_ envpath.LookupFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return particleGun(true, opts)
}

func particleGun(smeared bool, opts []pipeline.Option) (*pipeline.Pipeline, error) {
	return assemble(pipeline.WithRunParameters(1, pipeline.DefaultEvtSel, model.Info), opts, func(p *pipeline.Pipeline) error {
		data, err := components.K4DataSvc().Build(components.EventDataSvc)
		if err != nil {
			return err
		}

		hist, err := (&components.THistSvc{
			Common:    components.Common{OutputLevel: model.Info},
			Output:    []string{"rec DATAFILE='output_particleGun_GenHistograms.root' TYP='ROOT' OPT='RECREATE'"},
			PrintAll:  true,
			AutoSave:  1,
			AutoFlush: 1,
		}).Build("")
		if err != nil {
			return err
		}

		for _, svc := range []*pipeline.Descriptor{data, hist} {
			err = p.AddService(svc)
			if err != nil {
				return err
			}
		}

		signal, err := (&components.ConstPtParticleGun{
			PdgCodes: []int{-211},
			PtMin:    units.New(50, units.MeV),
			PtMax:    units.New(50, units.MeV),
		}).Build("SignalProvider")
		if err != nil {
			return err
		}

		genAlg := &components.GenAlg{SignalProvider: signal}

		if smeared {
			genAlg.VertexSmearingTool, err = (&components.FlatSmearVertex{
				XVertexMin: units.New(-10, units.Millimeter),
				XVertexMax: units.New(10, units.Millimeter),
				YVertexMin: units.New(-10, units.Millimeter),
				YVertexMax: units.New(10, units.Millimeter),
				ZVertexMin: units.New(-30, units.Millimeter),
				ZVertexMax: units.New(30, units.Millimeter),
			}).Build("")
			if err != nil {
				return err
			}
		}

		gen, err := genAlg.Build("")
		if err != nil {
			return err
		}

		dumper, err := (&components.HepMCDumper{}).Build("")
		if err != nil {
			return err
		}

		writer, err := (&components.HepMCFileWriter{}).Build("")
		if err != nil {
			return err
		}

		conv, err := (&components.HepMCToEDMConverter{}).Build("")
		if err != nil {
			return err
		}

		histo, err := (&components.HepMCHistograms{}).Build("GenHistograms")
		if err != nil {
			return err
		}

		out, err := podioOutput("output_particleGun.root", 0)
		if err != nil {
			return err
		}

		err = link(
			linkSpec{path: "hepmc", from: gen, to: dumper},
			linkSpec{path: "hepmc", from: gen, to: writer},
			linkSpec{path: "hepmc", from: gen, to: conv},
			linkSpec{path: "hepmc", from: gen, to: histo},
		)
		if err != nil {
			return err
		}

		err = conv.SetPath("GenParticles", "GenParticles")
		if err != nil {
			return err
		}

		return addStages(p, gen, dumper, writer, conv, histo, out)
	})
}

// PythiaPileUp overlays Poisson-distributed minimum bias events from a second Pythia instance on the signal.
func PythiaPileUp(cfg PileUpConfig, lookup envpath.LookupFunc, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return assemble(pipeline.WithRunParameters(2, pipeline.DefaultEvtSel, model.Info), opts, func(p *pipeline.Pipeline) error {
		err := generationServices(p)
		if err != nil {
			return err
		}

		card, err := envpath.Resolve(K4Gen, PythiaCard, envpath.WithLookup(lookup), envpath.WithDefault(""))
		if err != nil {
			return errors.Wrap(err, "unable to locate pythia card")
		}

		signal, err := (&components.PythiaInterface{PythiaCard: card}).Build("SignalProvider")
		if err != nil {
			return err
		}

		// minimum bias from the default card
		minBias, err := (&components.PythiaInterface{}).Build("PileUpProvider")
		if err != nil {
			return err
		}

		pileUp, err := (&components.PoissonPileUp{NumPileUpEvents: float64(cfg.NumPileUpEvents)}).Build("")
		if err != nil {
			return err
		}

		merge, err := (&components.HepMCSimpleMerge{}).Build("")
		if err != nil {
			return err
		}

		gauss := cfg.Gauss

		smear, err := gauss.Build("")
		if err != nil {
			return err
		}

		gen, err := (&components.GenAlg{
			SignalProvider:     signal,
			PileUpProvider:     minBias,
			PileUpTool:         pileUp,
			HepMCMergeTool:     merge,
			VertexSmearingTool: smear,
		}).Build("Pythia8PileUp")
		if err != nil {
			return err
		}

		conv, err := (&components.HepMCToEDMConverter{}).Build("")
		if err != nil {
			return err
		}

		out, err := podioOutput("output_pileup_"+cfg.Name+".root", 0)
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
