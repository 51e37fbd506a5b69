package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reel/internal/editor"
	"github.com/mesh-intelligence/reel/pkg/types"
)

func newTrackCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Manage timeline tracks",
	}
	cmd.AddCommand(newTrackAddCmd(e), newTrackListCmd(e), newTrackDeleteCmd(e))
	return cmd
}

func newTrackAddCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <type> [name]",
		Short: "Add a track",
		Long:  "Add a track of type video, audio, overlay, zoom, blur, pan or transform.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !types.ValidTrackType(args[0]) {
				return usageError("%s: %q", types.ErrInvalidTrackType, args[0])
			}
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			var id string
			err := e.withProject(cmd, func(s *editor.Session) error {
				id = s.AddTrack(args[0], name)
				return nil
			})
			if err != nil {
				return err
			}
			return output(cmd, map[string]string{"track_id": id}, id)
		},
	}
}

func newTrackListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracks in timeline order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withProject(cmd, func(s *editor.Session) error {
				tracks := s.Snapshot().Tracks
				var b strings.Builder
				tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTYPE\tNAME\tFLAGS")
				for _, t := range tracks {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.TrackID, t.Type, t.Name, trackFlags(t))
				}
				tw.Flush()
				return output(cmd, tracks, strings.TrimRight(b.String(), "\n"))
			})
		},
	}
}

func trackFlags(t types.Track) string {
	var f []string
	if t.Locked {
		f = append(f, "locked")
	}
	if !t.Visible {
		f = append(f, "hidden")
	}
	if t.Muted {
		f = append(f, "muted")
	}
	return strings.Join(f, ",")
}

func newTrackDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a track and everything on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withProject(cmd, func(s *editor.Session) error {
				if _, ok := s.Snapshot().Track(args[0]); !ok {
					return notFound("track", args[0])
				}
				s.DeleteTrack(args[0])
				return nil
			})
		},
	}
}
