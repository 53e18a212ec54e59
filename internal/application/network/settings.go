package network

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aescanero/alquimia/pkg/domain"
)

// ProtocolName identifies the solvation protocol the fabric executes
// for every experiment this builder produces.
const ProtocolName = "absolute_solvation"

// Settings is the protocol settings bundle for a solvation campaign.
// The core never interprets these values; they are hashed into the
// experiment identity and forwarded to the fabric as-is.
type Settings struct {
	Thermo     ThermoSettings     `yaml:"thermo" json:"thermo"`
	ForceField ForceFieldSettings `yaml:"forcefield" json:"forcefield"`
	Solvation  SolvationSettings  `yaml:"solvation" json:"solvation"`
	Integrator IntegratorSettings `yaml:"integrator" json:"integrator"`
	Simulation SimulationSettings `yaml:"simulation" json:"simulation"`
	Lambda     LambdaSettings     `yaml:"lambda" json:"lambda"`
}

// ThermoSettings sets the thermodynamic state.
type ThermoSettings struct {
	TemperatureK float64 `yaml:"temperature_k" json:"temperature_k"`
	PressureBar  float64 `yaml:"pressure_bar" json:"pressure_bar"`
}

// ForceFieldSettings names the force fields applied to both phases.
type ForceFieldSettings struct {
	ForceFields  []string `yaml:"forcefields" json:"forcefields"`
	HydrogenMass float64  `yaml:"hydrogen_mass" json:"hydrogen_mass"`
}

// SolvationSettings controls how the solvent box is packed.
type SolvationSettings struct {
	SolventMolecules int `yaml:"solvent_molecules" json:"solvent_molecules"`
}

// IntegratorSettings controls the integrator.
type IntegratorSettings struct {
	TimestepFs        float64 `yaml:"timestep_fs" json:"timestep_fs"`
	BarostatFrequency int     `yaml:"barostat_frequency" json:"barostat_frequency"`
}

// SimulationSettings sets equilibration and production lengths for the
// solvent and vacuum legs, in picoseconds.
type SimulationSettings struct {
	SolventEquilNVTPs   float64 `yaml:"solvent_equil_nvt_ps" json:"solvent_equil_nvt_ps"`
	SolventEquilPs      float64 `yaml:"solvent_equil_ps" json:"solvent_equil_ps"`
	SolventProductionPs float64 `yaml:"solvent_production_ps" json:"solvent_production_ps"`
	VacuumEquilPs       float64 `yaml:"vacuum_equil_ps" json:"vacuum_equil_ps"`
	VacuumProductionPs  float64 `yaml:"vacuum_production_ps" json:"vacuum_production_ps"`
	TimePerIterationPs  float64 `yaml:"time_per_iteration_ps" json:"time_per_iteration_ps"`
	Replicas            int     `yaml:"replicas" json:"replicas"`
}

// LambdaSettings is the alchemical schedule. The electrostatic and
// van der Waals windows must have the same length as Replicas.
type LambdaSettings struct {
	Elec       []float64 `yaml:"elec" json:"elec"`
	VdW        []float64 `yaml:"vdw" json:"vdw"`
	Restraints []float64 `yaml:"restraints" json:"restraints"`
}

// DefaultSettings returns the campaign defaults: a 26-window schedule
// that switches electrostatics off over the first six windows and then
// decouples van der Waals, with short equilibration legs.
func DefaultSettings() Settings {
	elec := make([]float64, 26)
	vdw := make([]float64, 26)
	restraints := make([]float64, 26)
	for i := range elec {
		switch {
		case i < 6:
			elec[i] = float64(i) * 0.2
		default:
			elec[i] = 1.0
		}
		if i >= 5 {
			vdw[i] = float64(i-5) * 0.05
		}
	}

	return Settings{
		Thermo: ThermoSettings{
			TemperatureK: 298.15,
			PressureBar:  1.0,
		},
		ForceField: ForceFieldSettings{
			ForceFields:  []string{"openff-2.2.1.offxml"},
			HydrogenMass: 1.00784,
		},
		Solvation: SolvationSettings{
			SolventMolecules: 1000,
		},
		Integrator: IntegratorSettings{
			TimestepFs:        2,
			BarostatFrequency: 25,
		},
		Simulation: SimulationSettings{
			SolventEquilNVTPs:   100,
			SolventEquilPs:      100,
			SolventProductionPs: 100,
			VacuumEquilPs:       100,
			VacuumProductionPs:  100,
			TimePerIterationPs:  1,
			Replicas:            26,
		},
		Lambda: LambdaSettings{
			Elec:       elec,
			VdW:        vdw,
			Restraints: restraints,
		},
	}
}

// LoadSettings reads a YAML settings bundle, applied over the
// defaults so a bundle only needs to name what it overrides.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings bundle: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings bundle: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks internal consistency of the bundle.
func (s Settings) Validate() error {
	if s.Simulation.Replicas < 2 {
		return domain.NewValidationError("simulation.replicas", "must be at least 2")
	}
	if len(s.Lambda.Elec) != s.Simulation.Replicas {
		return domain.NewValidationError("lambda.elec",
			fmt.Sprintf("schedule has %d windows, want %d", len(s.Lambda.Elec), s.Simulation.Replicas))
	}
	if len(s.Lambda.VdW) != s.Simulation.Replicas {
		return domain.NewValidationError("lambda.vdw",
			fmt.Sprintf("schedule has %d windows, want %d", len(s.Lambda.VdW), s.Simulation.Replicas))
	}
	if len(s.Lambda.Restraints) != 0 && len(s.Lambda.Restraints) != s.Simulation.Replicas {
		return domain.NewValidationError("lambda.restraints",
			fmt.Sprintf("schedule has %d windows, want %d", len(s.Lambda.Restraints), s.Simulation.Replicas))
	}
	if s.Thermo.TemperatureK <= 0 {
		return domain.NewValidationError("thermo.temperature_k", "must be positive")
	}
	return nil
}

// ToProtocolSettings flattens the bundle into the generic settings map
// carried by experiments.
func (s Settings) ToProtocolSettings() domain.ProtocolSettings {
	return domain.ProtocolSettings{
		"thermo": map[string]any{
			"temperature_k": s.Thermo.TemperatureK,
			"pressure_bar":  s.Thermo.PressureBar,
		},
		"forcefield": map[string]any{
			"forcefields":   s.ForceField.ForceFields,
			"hydrogen_mass": s.ForceField.HydrogenMass,
		},
		"solvation": map[string]any{
			"solvent_molecules": s.Solvation.SolventMolecules,
		},
		"integrator": map[string]any{
			"timestep_fs":        s.Integrator.TimestepFs,
			"barostat_frequency": s.Integrator.BarostatFrequency,
		},
		"simulation": map[string]any{
			"solvent_equil_nvt_ps":  s.Simulation.SolventEquilNVTPs,
			"solvent_equil_ps":      s.Simulation.SolventEquilPs,
			"solvent_production_ps": s.Simulation.SolventProductionPs,
			"vacuum_equil_ps":       s.Simulation.VacuumEquilPs,
			"vacuum_production_ps":  s.Simulation.VacuumProductionPs,
			"time_per_iteration_ps": s.Simulation.TimePerIterationPs,
			"replicas":              s.Simulation.Replicas,
		},
		"lambda": map[string]any{
			"elec":       s.Lambda.Elec,
			"vdw":        s.Lambda.VdW,
			"restraints": s.Lambda.Restraints,
		},
	}
}
