package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"zk-porrinha/internal/apiclient"
	"zk-porrinha/internal/commitment"
	"zk-porrinha/internal/zk"
)

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// SetupCmd runs a local Groth16 setup. Keys from a local setup are only fit
// for development.
func SetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Compile the hand circuit and write Groth16 keys",
		RunE:  runSetup,
	}
	return cmd
}

func runSetup(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("keys")
	pc, err := zk.Setup()
	if err != nil {
		return err
	}
	if err := pc.Save(dir); err != nil {
		return err
	}
	return printJSON(cmd, map[string]string{
		"circuit":       filepath.Join(dir, zk.CircuitFile),
		"proving_key":   filepath.Join(dir, zk.ProvingKeyFile),
		"verifying_key": filepath.Join(dir, zk.VerifyingKeyFile),
	})
}

func SaltCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "salt",
		Short: "Draw a fresh commitment salt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			salt, err := commitment.NewSalt(nil)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"salt": commitment.FormatSalt(salt)})
		},
	}
}

func addTupleFlags(cmd *cobra.Command) {
	cmd.Flags().Uint8("hand", 0, "fingers shown, 0..5")
	cmd.Flags().Uint8("parity", 0, "parity guess, 0 even 1 odd")
	cmd.Flags().Uint8("total", 0, "guess of the total, 0..10")
	cmd.Flags().Uint8("guess", 0, "jackpot guess, 0..99")
	cmd.Flags().String("salt", "", "salt as 0x hex or decimal")
	cmd.MarkFlagRequired("hand")
	cmd.MarkFlagRequired("parity")
	cmd.MarkFlagRequired("total")
	cmd.MarkFlagRequired("guess")
}

// tupleFromFlags reads the tuple flags. A missing salt is drawn fresh when
// allowNew is set.
func tupleFromFlags(cmd *cobra.Command, allowNew bool) (commitment.Tuple, error) {
	hand, _ := cmd.Flags().GetUint8("hand")
	parity, _ := cmd.Flags().GetUint8("parity")
	total, _ := cmd.Flags().GetUint8("total")
	guess, _ := cmd.Flags().GetUint8("guess")
	rawSalt, _ := cmd.Flags().GetString("salt")

	var (
		salt *big.Int
		err  error
	)
	switch {
	case rawSalt != "":
		salt, err = commitment.ParseSalt(rawSalt)
	case allowNew:
		salt, err = commitment.NewSalt(nil)
	default:
		err = errors.New("--salt is required")
	}
	if err != nil {
		return commitment.Tuple{}, err
	}
	t := commitment.Tuple{Hand: hand, Parity: parity, TotalGuess: total, JackpotGuess: guess, Salt: salt}
	if err := t.Validate(); err != nil {
		return commitment.Tuple{}, err
	}
	return t, nil
}

func CommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Compute the commitment for a hand",
		RunE:  runCommit,
	}
	addTupleFlags(cmd)
	cmd.MarkFlagRequired("salt")
	return cmd
}

func runCommit(cmd *cobra.Command, _ []string) error {
	t, err := tupleFromFlags(cmd, false)
	if err != nil {
		return err
	}
	digest, err := commitment.Hash(t)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]string{
		"commitment": digest.String(),
		"salt":       commitment.FormatSalt(t.Salt),
	})
}

func ProveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Prove a hand against a room's jackpot hash and print the commit body",
		RunE:  runProve,
	}
	addTupleFlags(cmd)
	cmd.Flags().Uint64("room", 0, "room id")
	cmd.Flags().Bool("submit", false, "post the commit with --api_key instead of only printing it")
	cmd.MarkFlagRequired("room")
	return cmd
}

type proveOutput struct {
	RoomID      uint64               `json:"room_id"`
	Salt        string               `json:"salt"`
	Accumulated uint64               `json:"accumulated"`
	Commit      apiclient.CommitBody `json:"commit"`
	Result      json.RawMessage      `json:"result,omitempty"`
}

func runProve(cmd *cobra.Command, _ []string) error {
	server, _ := cmd.Flags().GetString("server")
	apiKey, _ := cmd.Flags().GetString("api_key")
	dir, _ := cmd.Flags().GetString("keys")
	roomID, _ := cmd.Flags().GetUint64("room")
	submit, _ := cmd.Flags().GetBool("submit")

	t, err := tupleFromFlags(cmd, true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	client := apiclient.New(server, apiKey)
	room, err := client.Room(ctx, roomID)
	if err != nil {
		return err
	}
	rawHash, err := client.JackpotHash(ctx, roomID)
	if err != nil {
		return err
	}
	acc, err := recoverAccumulator(rawHash, accumulatorBound(room.RoundsPlayed))
	if err != nil {
		return err
	}

	pc, err := zk.LoadContext(dir)
	if err != nil {
		return err
	}
	prover, err := zk.NewProver(pc)
	if err != nil {
		return err
	}
	proof, err := prover.Prove(t, acc)
	if err != nil {
		return err
	}
	out := proveOutput{
		RoomID:      roomID,
		Salt:        commitment.FormatSalt(t.Salt),
		Accumulated: acc,
		Commit: apiclient.CommitBody{
			Commitment: proof.Inputs.Commitment.String(),
			Proof:      proof.Envelope,
			Hand:       int(proof.Inputs.Hand),
			Parity:     int(proof.Inputs.Parity),
			TotalGuess: int(proof.Inputs.TotalGuess),
			JackpotHit: proof.Inputs.JackpotHit,
		},
	}
	if submit {
		if apiKey == "" {
			return errors.New("--submit needs --api_key")
		}
		res, err := client.Commit(ctx, roomID, out.Commit)
		if err != nil {
			return err
		}
		out.Result = res
	}
	return printJSON(cmd, out)
}

// accumulatorBound is the largest accumulator a room can hold after rounds
// settled rounds.
func accumulatorBound(rounds uint32) uint64 {
	return (uint64(rounds) + 1) * (commitment.JackpotSpace - 1)
}

func recoverAccumulator(rawHash string, max uint64) (uint64, error) {
	h, err := commitment.ParseDigest(rawHash)
	if err != nil {
		return 0, errors.Wrap(err, "parse jackpot hash")
	}
	acc, ok := commitment.RecoverAccumulator(h, max)
	if !ok {
		return 0, fmt.Errorf("no accumulator up to %d matches %s", max, rawHash)
	}
	return acc, nil
}

func JackpotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jackpot",
		Short: "Recover the accumulator and residue behind a jackpot hash",
		RunE:  runJackpot,
	}
	cmd.Flags().String("hash", "", "0x jackpot hash")
	cmd.Flags().Uint64("max", 100*(commitment.JackpotSpace-1), "search bound")
	cmd.MarkFlagRequired("hash")
	return cmd
}

func runJackpot(cmd *cobra.Command, _ []string) error {
	raw, _ := cmd.Flags().GetString("hash")
	max, _ := cmd.Flags().GetUint64("max")
	acc, err := recoverAccumulator(raw, max)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{
		"accumulated": acc,
		"residue":     commitment.Residue(acc),
	})
}
