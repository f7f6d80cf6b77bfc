package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"nifri2/emotipet/personality"
	"nifri2/emotipet/storage"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the persisted personality record as YAML",
	Long: `Read the personality record from the configured store (--state or
--redis) without modifying it.`,
	Args: cobra.NoArgs,
	RunE: showState,
}

func init() {
	rootCmd.AddCommand(stateCmd)
}

type stateView struct {
	Key         string         `yaml:"key"`
	Initialized bool           `yaml:"initialized"`
	Traits      map[string]int `yaml:"traits"`
	Bond        int            `yaml:"bond"`
	Favorite    int            `yaml:"favorite"`
	Touches     []int          `yaml:"touches"`
}

func showState(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	kv, release, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer release()

	rec := personality.NewRecord(cfg.Pet.Channels)
	view := stateView{Key: cfg.Store.Key}

	data, err := kv.Get(cfg.Store.Key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return err
	default:
		err := rec.UnmarshalBinary(data)
		if err != nil && !errors.Is(err, personality.ErrUninitialized) {
			return err
		}
		view.Initialized = err == nil
	}

	view.Traits = make(map[string]int, personality.TraitCount)
	for i, v := range rec.Traits {
		view.Traits[personality.Trait(i).String()] = int(v)
	}
	view.Bond = int(rec.History.Bond)
	view.Favorite = rec.Favorite()
	for _, n := range rec.History.Touches {
		view.Touches = append(view.Touches, int(n))
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return enc.Close()
}
