package zk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/rs/zerolog/log"
)

const (
	CircuitFile      = "circuit.r1cs"
	ProvingKeyFile   = "proving.key"
	VerifyingKeyFile = "verifying.key"
)

// ProofContext owns the compiled constraint system and its Groth16 keys.
// A verifier-only context has no proving key.
type ProofContext struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

func Compile() (constraint.ConstraintSystem, error) {
	var c HandCircuit
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &c)
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}
	return ccs, nil
}

// Setup compiles the circuit and runs a fresh Groth16 setup. The toxic waste
// is local to this process, so keys made here are for development only.
func Setup() (*ProofContext, error) {
	ccs, err := Compile()
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup: %w", err)
	}
	log.Info().Int("constraints", ccs.GetNbConstraints()).Msg("zk setup complete")
	return &ProofContext{ccs: ccs, pk: pk, vk: vk}, nil
}

// LoadContext reads a full context written by Save.
func LoadContext(dir string) (*ProofContext, error) {
	ccs := groth16.NewCS(ecc.BN254)
	if err := readFile(filepath.Join(dir, CircuitFile), ccs); err != nil {
		return nil, err
	}
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := readFile(filepath.Join(dir, ProvingKeyFile), pk); err != nil {
		return nil, err
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readFile(filepath.Join(dir, VerifyingKeyFile), vk); err != nil {
		return nil, err
	}
	return &ProofContext{ccs: ccs, pk: pk, vk: vk}, nil
}

// LoadVerifyingContext reads only the verifying key.
func LoadVerifyingContext(dir string) (*ProofContext, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readFile(filepath.Join(dir, VerifyingKeyFile), vk); err != nil {
		return nil, err
	}
	return &ProofContext{vk: vk}, nil
}

// LoadOrSetup loads keys from dir, or when autoSetup is set and nothing is
// there yet, runs Setup and saves the result.
func LoadOrSetup(dir string, autoSetup bool) (*ProofContext, error) {
	pc, err := LoadContext(dir)
	if err == nil {
		return pc, nil
	}
	if !autoSetup {
		return nil, err
	}
	log.Warn().Str("dir", dir).Err(err).Msg("zk keys not loaded, running local setup")
	pc, err = Setup()
	if err != nil {
		return nil, err
	}
	if err := pc.Save(dir); err != nil {
		return nil, err
	}
	return pc, nil
}

func (c *ProofContext) Save(dir string) error {
	if c.ccs == nil || c.pk == nil {
		return ErrMissingKeys
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create keys dir: %w", err)
	}
	if err := writeFile(filepath.Join(dir, CircuitFile), c.ccs); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, ProvingKeyFile), c.pk); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, VerifyingKeyFile), c.vk)
}

func (c *ProofContext) CanProve() bool {
	return c.ccs != nil && c.pk != nil
}

func readFile(path string, dst io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingKeys, err)
	}
	defer f.Close()
	if _, err := dst.ReadFrom(f); err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeFile(path string, src io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := src.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
