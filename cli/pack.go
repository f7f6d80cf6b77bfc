package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nifri2/emotipet/anim"
	"nifri2/emotipet/render"
	"nifri2/emotipet/rle"
)

var packCmd = &cobra.Command{
	Use:   "pack --out <file.anim> frame...",
	Short: "Compress raw display frames into an .anim container",
	Long: `Each frame file must hold exactly one 128x64 display frame in SSD1306 page
order (1024 bytes). Frames are run-length encoded and written as one
container. With --manifest the clip is added to (or replaced in) the
manifest.txt next to the output.

Example:
  petsim pack --fps 12 --out animations/happy.anim frames/happy_*.bin --manifest`,
	Args: cobra.MinimumNArgs(1),
	RunE: packClip,
}

func init() {
	rootCmd.AddCommand(packCmd)

	packCmd.Flags().String("out", "", "output container (required)")
	packCmd.Flags().Int("fps", 12, "playback rate")
	packCmd.Flags().Bool("manifest", false, "update manifest.txt in the output directory")
	_ = packCmd.MarkFlagRequired("out")
}

func packClip(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	fps, _ := cmd.Flags().GetInt("fps")
	updateManifest, _ := cmd.Flags().GetBool("manifest")

	frames := make([][]byte, 0, len(args))
	for _, path := range args {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read frame: %w", err)
		}
		if len(raw) != render.FrameSize {
			return fmt.Errorf("%s is %d bytes, want %d", path, len(raw), render.FrameSize)
		}
		frames = append(frames, rle.Encode(nil, raw))
	}

	var buf bytes.Buffer
	if err := anim.WriteContainer(&buf, fps, frames); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write container: %w", err)
	}

	entry := anim.ManifestEntry{Key: filepath.Base(out), FrameCount: len(frames), FPS: fps}
	for _, fr := range frames {
		if len(fr) > entry.MaxCompressedSize {
			entry.MaxCompressedSize = len(fr)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d frames, %d fps, %d bytes (max frame %d)\n",
		out, entry.FrameCount, fps, buf.Len(), entry.MaxCompressedSize)

	if updateManifest {
		return mergeManifest(filepath.Join(filepath.Dir(out), anim.ManifestName), entry)
	}
	return nil
}

// mergeManifest replaces or appends entry in the manifest at path.
func mergeManifest(path string, entry anim.ManifestEntry) error {
	var entries []anim.ManifestEntry
	f, err := os.Open(path)
	switch {
	case err == nil:
		entries, err = anim.ReadManifest(f)
		f.Close()
		if err != nil {
			return err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to open manifest: %w", err)
	}

	replaced := false
	for i := range entries {
		if entries[i].Key == entry.Key {
			entries[i] = entry
			replaced = true
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}

	var buf bytes.Buffer
	if err := anim.WriteManifest(&buf, entries); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
