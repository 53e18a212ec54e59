package network

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/aescanero/alquimia/pkg/domain"
)

// Molecule is one input descriptor: a name and an opaque structure
// string (typically a SMILES) with the charge policy to apply when the
// fabric parameterizes it.
type Molecule struct {
	Name         string `json:"name"`
	Structure    string `json:"structure"`
	ChargePolicy string `json:"charge_policy,omitempty"`
}

// Builder constructs solvation experiment graphs.
type Builder struct {
	settings Settings
	logger   *zap.Logger
}

// NewBuilder creates a builder using the given settings bundle.
func NewBuilder(settings Settings, logger *zap.Logger) *Builder {
	return &Builder{settings: settings, logger: logger}
}

// Build produces the experiment graph for the input molecules: for
// every ordered (solute, solvent) pair of distinct molecules, one
// experiment whose decorated state holds the solute dissolved in the
// solvent and whose reference state holds the solvent alone.
func (b *Builder) Build(molecules []Molecule) (*domain.ExperimentGraph, error) {
	if len(molecules) < 2 {
		return nil, domain.NewValidationError("molecules", "need at least two molecules to form solute/solvent pairs")
	}
	seen := make(map[string]bool, len(molecules))
	for _, m := range molecules {
		if m.Structure == "" {
			return nil, domain.NewValidationError("molecules", fmt.Sprintf("molecule %q has no structure", m.Name))
		}
		if seen[m.Structure] {
			return nil, domain.NewValidationError("molecules", fmt.Sprintf("duplicate structure %q", m.Structure))
		}
		seen[m.Structure] = true
	}

	protoSettings := b.settings.ToProtocolSettings()

	var experiments []*domain.Experiment
	for _, solute := range molecules {
		for _, solvent := range molecules {
			if solute.Structure == solvent.Structure {
				continue
			}
			experiments = append(experiments, &domain.Experiment{
				Name: fmt.Sprintf("%s_in_%s", solute.Name, solvent.Name),
				StateA: domain.ChemicalState{
					Components: map[string]string{
						"solute":  solute.Structure,
						"solvent": solvent.Structure,
					},
				},
				StateB: domain.ChemicalState{
					Components: map[string]string{
						"solvent": solvent.Structure,
					},
				},
				Protocol: ProtocolName,
				Settings: protoSettings,
			})
		}
	}

	graph := domain.NewExperimentGraph(experiments)
	b.logger.Info("experiment graph built",
		zap.Int("molecules", len(molecules)),
		zap.Int("experiments", graph.Len()))

	return graph, nil
}

// ReadMolecules reads one structure per line from a plain text file,
// skipping blanks and '#' comments. The structure doubles as the name.
func ReadMolecules(path string) ([]Molecule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open molecule file: %w", err)
	}
	defer f.Close()

	var molecules []Molecule
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		molecules = append(molecules, Molecule{Name: line, Structure: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read molecule file: %w", err)
	}
	return molecules, nil
}

// WriteGraph serializes a graph to a JSON file so submission can run
// from a different invocation than graph construction.
func WriteGraph(graph *domain.ExperimentGraph, path string) error {
	data, err := graph.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write graph file: %w", err)
	}
	return nil
}

// ReadGraph loads a graph written by WriteGraph.
func ReadGraph(path string) (*domain.ExperimentGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	var graph domain.ExperimentGraph
	if err := graph.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("failed to parse graph file: %w", err)
	}
	return &graph, nil
}
