// Package network builds experiment graphs for solvation free-energy
// campaigns: each solute is dissolved in every other input molecule
// acting as solvent, giving one decoupling experiment per ordered
// pair. Molecule parameterization is not done here; descriptors are
// carried opaquely into the experiments.
package network
