package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nifri2/emotipet/anim"
	"nifri2/emotipet/render"
	"nifri2/emotipet/rle"
	"nifri2/emotipet/storage"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.anim>",
	Short: "Show a container's header and check every frame",
	Long: `Print the header and size table of an .anim container and decode every
frame, reporting frames that do not expand to exactly one display frame.`,
	Args: cobra.ExactArgs(1),
	RunE: inspectClip,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var errBadFrames = errors.New("container has bad frames")

func inspectClip(cmd *cobra.Command, args []string) error {
	path := args[0]
	fsys := storage.FromFS(os.DirFS(filepath.Dir(path)))
	key := filepath.Base(path)

	clip, err := anim.LoadMetadata(fsys, key, "")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d frames, %d fps, max %d bytes per frame\n",
		clip.Key, clip.FrameCount, clip.FPS, clip.MaxCompressedSize)

	stream := anim.NewStream(fsys)
	if err := stream.Open(clip); err != nil {
		return err
	}
	defer stream.Close()

	buf := make([]byte, clip.MaxCompressedSize)
	bad := 0
	for i := 0; i < clip.FrameCount; i++ {
		n, err := stream.ReadFrame(i, buf)
		if err != nil {
			fmt.Fprintf(out, "  %4d  %5d bytes  read error: %v\n", i, stream.FrameSize(i), err)
			bad++
			continue
		}
		size, err := rle.DecodedSize(buf[:n])
		switch {
		case err != nil:
			fmt.Fprintf(out, "  %4d  %5d bytes  %v\n", i, n, err)
			bad++
		case size != render.FrameSize:
			fmt.Fprintf(out, "  %4d  %5d bytes  decodes to %d, want %d\n", i, n, size, render.FrameSize)
			bad++
		default:
			fmt.Fprintf(out, "  %4d  %5d bytes  ok\n", i, n)
		}
	}

	if bad > 0 {
		return fmt.Errorf("%w: %d of %d", errBadFrames, bad, clip.FrameCount)
	}
	return nil
}
