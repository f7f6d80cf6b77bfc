package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pet "nifri2/emotipet/cmd"
	"nifri2/emotipet/config"
	"nifri2/emotipet/personality"
	"nifri2/emotipet/render"
	"nifri2/emotipet/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pet against a scripted virtual board",
	Long: `Run the pet's control loop in virtual time. Touches and motion come from
a script with one command per line:

  at 2s tap 0
  at 3s tap 0 250ms
  at 10s press 1
  at 14s release 1
  at 20s shake
  at 30s tilt left
  at 40s still

The personality record is kept in memory unless --state or --redis is set.

Examples:
  petsim run --script greet.txt --assets animations
  petsim run --script greet.txt --for 1h --tick 50ms --state ./state`,
	RunE: runPet,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("script", "", "scenario script (required)")
	runCmd.Flags().String("assets", "", "directory with manifest.txt and .anim files")
	runCmd.Flags().Duration("for", 0, "virtual time to run (default: script end + 10s)")
	runCmd.Flags().Duration("tick", 0, "loop period")
	runCmd.Flags().Int64("seed", 0, "random seed (default: time based)")
	runCmd.Flags().Bool("ascii", false, "print the final screen")
	_ = runCmd.MarkFlagRequired("script")
	_ = viper.BindPFlag("assets.dir", runCmd.Flags().Lookup("assets"))
	_ = viper.BindPFlag("pet.tick", runCmd.Flags().Lookup("tick"))
	_ = viper.BindPFlag("pet.seed", runCmd.Flags().Lookup("seed"))
}

func settingsFrom(cfg *config.Config) pet.Settings {
	s := pet.DefaultSettings()
	s.Channels = cfg.Pet.Channels
	s.Tick = cfg.Pet.Tick
	s.SaveInterval = cfg.Pet.SaveInterval
	s.Seed = cfg.Pet.Seed
	s.StateKey = cfg.Store.Key
	s.Manifest = cfg.Assets.Manifest
	s.Store = pet.StoreMemory
	s.Gesture = cfg.Gesture
	s.Motion = cfg.Motion
	s.Emotion = cfg.Emotion
	return s
}

func runPet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	scriptPath, _ := cmd.Flags().GetString("script")
	runFor, _ := cmd.Flags().GetDuration("for")
	ascii, _ := cmd.Flags().GetBool("ascii")

	f, err := os.Open(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	script, err := sim.ParseScript(f, cfg.Motion)
	f.Close()
	if err != nil {
		return err
	}

	board, err := sim.NewBoard(script, cfg.Pet.Channels, cfg.Motion)
	if err != nil {
		return err
	}

	kv, release, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer release()

	runID := uuid.NewString()[:8]
	out := cmd.OutOrStdout()
	logs := io.Discard
	if viper.GetBool("verbose") {
		logs = out
	}
	logger := log.New(logs, runID+" ", 0)

	screen := render.NewBuffer(render.Width, render.Height)
	p := pet.NewPet(settingsFrom(cfg), pet.Board{
		Sensors: board,
		Screen:  screen,
		Motor:   board,
		Assets:  os.DirFS(cfg.Assets.Dir),
		KV:      kv,
	}, logger)

	if err := p.Boot(0); err != nil {
		return err
	}

	if runFor <= 0 {
		runFor = script.End() + 10*time.Second
	}
	ticks := 0
	for now := time.Duration(0); now <= runFor; now += cfg.Pet.Tick {
		p.Tick(now)
		ticks++
	}
	if err := p.Save(runFor); err != nil {
		return fmt.Errorf("failed to save personality: %w", err)
	}

	printSummary(out, runID, runFor, ticks, p)
	if ascii {
		fmt.Fprintln(out, screen.ASCII())
	}
	return nil
}

func printSummary(w io.Writer, runID string, ran time.Duration, ticks int, p *pet.Pet) {
	m := p.Machine()
	rec := p.Record()

	fmt.Fprintf(w, "run %s: %s simulated, %d ticks\n", runID, ran, ticks)
	fmt.Fprintf(w, "emotion: %s (previous %s, %d transitions)\n", m.Current(), m.Previous(), m.Transitions())

	traits := make([]string, 0, personality.TraitCount)
	for i, v := range rec.Traits {
		traits = append(traits, fmt.Sprintf("%s=%d", personality.Trait(i), v))
	}
	fmt.Fprintf(w, "traits: %s\n", strings.Join(traits, " "))
	fmt.Fprintf(w, "bond: %d favorite: %d touches: %d\n", rec.History.Bond, rec.Favorite(), rec.History.Total())

	if !p.Player().Loaded() {
		fmt.Fprintf(w, "animation: not loaded (%v)\n", p.Player().Err())
	} else {
		fmt.Fprintf(w, "animation: %s frame %d\n", p.Player().Clip().Name, p.Player().Index())
	}
}
