// ppzkgen runs the full pipeline on one of the demo circuits: key
// generation, proving, verification, and key persistence.
//
//	ppzkgen -circuit and -dir ./keys
package main

import (
	"encoding/hex"
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/profile"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/devourillusion/snarklib/examples"
	"github.com/devourillusion/snarklib/logger"
	"github.com/devourillusion/snarklib/ppzk"
)

func main() {
	var (
		circuitName = flag.String("circuit", "and", "circuit to run: and, or, xor, not, soundness")
		dir         = flag.String("dir", ".", "directory receiving pk.bin and vk.bin")
		tune        = flag.Int("tune", 0, "reserve tuning for the prover multi-exp, 0 = auto")
		profiled    = flag.Bool("profile", false, "write a cpu profile next to the keys")
	)
	flag.Parse()

	log := logger.Logger()

	if *profiled {
		defer profile.Start(profile.ProfilePath(*dir), profile.Quiet).Stop()
	}

	var c examples.Circuit
	switch *circuitName {
	case "and":
		c = examples.AND(true)
	case "or":
		c = examples.OR(true)
	case "xor":
		c = examples.XOR(true)
	case "not":
		c = examples.NOT()
	case "soundness":
		c = examples.Soundness(3, 5, 7)
	default:
		log.Error().Str("circuit", *circuitName).Msg("unknown circuit")
		os.Exit(1)
	}

	kp, err := ppzk.Setup(c.System, ppzk.WithObserver(newBar("setup")))
	if err != nil {
		log.Error().Err(err).Msg("setup failed")
		os.Exit(1)
	}

	var g errgroup.Group
	g.Go(func() error { return writeKey(filepath.Join(*dir, "pk.bin"), &kp.PK) })
	g.Go(func() error { return writeKey(filepath.Join(*dir, "vk.bin"), &kp.VK) })
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("writing keys failed")
		os.Exit(1)
	}

	pkDigest, _ := kp.PK.Fingerprint()
	vkDigest, _ := kp.VK.Fingerprint()
	log.Info().
		Str("pk", hex.EncodeToString(pkDigest[:8])).
		Str("vk", hex.EncodeToString(vkDigest[:8])).
		Msg("key fingerprints")

	proof, err := ppzk.Prove(c.System, &kp.PK, c.Witness,
		ppzk.WithObserver(newBar("prove")), ppzk.WithReserveTune(*tune))
	if err != nil {
		log.Error().Err(err).Msg("prover failed")
		os.Exit(1)
	}

	ok, err := ppzk.StrongVerifyKey(&kp.VK, c.Input, proof, ppzk.WithObserver(newBar("verify")))
	if err != nil {
		log.Error().Err(err).Msg("verifier failed")
		os.Exit(1)
	}
	log.Info().Bool("accepted", ok).Msg("verification")
	if !ok {
		os.Exit(1)
	}
}

func writeKey(path string, key io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := key.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// barObserver renders major steps as a terminal progress bar
type barObserver struct {
	name string
	bar  *progressbar.ProgressBar
}

func newBar(name string) *barObserver {
	return &barObserver{name: name}
}

func (o *barObserver) MajorSteps(n int) {
	o.bar = progressbar.NewOptions(n,
		progressbar.OptionSetDescription(o.name),
		progressbar.OptionClearOnFinish(),
	)
}

func (o *barObserver) Major() bool {
	if o.bar != nil {
		_ = o.bar.Add(1)
	}
	return true
}

func (o *barObserver) Minor() {}
