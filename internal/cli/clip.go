package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reel/internal/editor"
	"github.com/mesh-intelligence/reel/pkg/types"
)

func newClipCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clip",
		Short: "Place and edit media clips",
	}
	cmd.AddCommand(
		newClipAddCmd(e),
		newClipListCmd(e),
		newClipMoveCmd(e),
		newClipTrimCmd(e),
		newClipSplitCmd(e),
		newClipSpeedCmd(e),
		newClipDuplicateCmd(e),
		newClipDeleteCmd(e),
		newClipLinkCmd(e),
		newClipUnlinkCmd(e),
		newClipDetachAudioCmd(e),
	)
	return cmd
}

// clipEdit runs fn on the session after checking that the clip exists.
func (e *env) clipEdit(cmd *cobra.Command, id string, fn func(s *editor.Session) error) error {
	return e.withProject(cmd, func(s *editor.Session) error {
		if _, ok := s.Snapshot().Clip(id); !ok {
			return notFound("clip", id)
		}
		return fn(s)
	})
}

// clipCreate runs add against an existing clip and prints the new ID.
func (e *env) clipCreate(cmd *cobra.Command, id, what string, add func(s *editor.Session) string) error {
	var created string
	err := e.clipEdit(cmd, id, func(s *editor.Session) error {
		created = add(s)
		if created == "" {
			return usageError("could not %s clip %q", what, id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return output(cmd, map[string]string{"clip_id": created}, created)
}

func parseMs(arg string) (int64, error) {
	ms, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || ms < 0 {
		return 0, usageError("invalid time %q (milliseconds)", arg)
	}
	return ms, nil
}

func newClipAddCmd(e *env) *cobra.Command {
	var c types.Clip
	cmd := &cobra.Command{
		Use:   "add <track-id> <source>",
		Short: "Place a clip on a track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !types.ValidSourceType(c.SourceType) {
				return usageError("unknown source type %q (valid: video, image, audio)", c.SourceType)
			}
			c.TrackID = args[0]
			c.SourcePath = args[1]
			if c.Name == "" {
				c.Name = args[1]
			}
			var id string
			err := e.withProject(cmd, func(s *editor.Session) error {
				if _, ok := s.Snapshot().Track(c.TrackID); !ok {
					return notFound("track", c.TrackID)
				}
				id = s.AddClip(c)
				if id == "" {
					return usageError("could not add clip to track %q", c.TrackID)
				}
				return nil
			})
			if err != nil {
				return err
			}
			return output(cmd, map[string]string{"clip_id": id}, id)
		},
	}
	cmd.Flags().StringVar(&c.Name, "name", "", "clip name (default: the source path)")
	cmd.Flags().StringVar(&c.SourceType, "source-type", types.SourceVideo, "source type: video, image, audio")
	cmd.Flags().Int64Var(&c.SourceDurationMs, "source-duration", 0, "length of the source in ms")
	cmd.Flags().Int64Var(&c.StartTimeMs, "start", 0, "timeline start in ms")
	cmd.Flags().Int64Var(&c.DurationMs, "duration", 0, "timeline duration in ms (default: the whole source)")
	cmd.Flags().BoolVar(&c.HasAudio, "has-audio", false, "the source carries an audio stream")
	return cmd
}

func newClipListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List media clips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withProject(cmd, func(s *editor.Session) error {
				clips := s.Snapshot().Clips
				var b strings.Builder
				tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTRACK\tNAME\tSTART\tDURATION\tSPEED\tLINKED")
				for _, c := range clips {
					linked := ""
					if c.LinkedClipID != nil {
						linked = *c.LinkedClipID
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%g\t%s\n",
						c.ClipID, c.TrackID, c.Name, c.StartTimeMs, c.DurationMs, c.Speed, linked)
				}
				tw.Flush()
				return output(cmd, clips, strings.TrimRight(b.String(), "\n"))
			})
		},
	}
}

func newClipMoveCmd(e *env) *cobra.Command {
	var track string
	cmd := &cobra.Command{
		Use:   "move <id> <start-ms>",
		Short: "Move a clip in time, optionally onto another track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseMs(args[1])
			if err != nil {
				return err
			}
			return e.clipEdit(cmd, args[0], func(s *editor.Session) error {
				target := track
				if target == "" {
					c, _ := s.Snapshot().Clip(args[0])
					target = c.TrackID
				}
				if _, ok := s.Snapshot().Track(target); !ok {
					return notFound("track", target)
				}
				s.MoveClip(args[0], target, start)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&track, "track", "", "destination track (default: the clip's track)")
	return cmd
}

func newClipTrimCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "trim <id> <in-ms> <out-ms>",
		Short: "Set the source window a clip plays",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseMs(args[1])
			if err != nil {
				return err
			}
			out, err := parseMs(args[2])
			if err != nil {
				return err
			}
			if out <= in {
				return usageError("out point %d must follow in point %d", out, in)
			}
			return e.clipEdit(cmd, args[0], func(s *editor.Session) error {
				s.TrimClip(args[0], in, out)
				return nil
			})
		},
	}
}

func newClipSplitCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "split <id> <at-ms>",
		Short: "Cut a clip at a timeline position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseMs(args[1])
			if err != nil {
				return err
			}
			return e.clipCreate(cmd, args[0], "split", func(s *editor.Session) string {
				return s.SplitClip(args[0], at)
			})
		},
	}
}

func newClipSpeedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "speed <id> <speed>",
		Short: "Change playback speed, keeping the source window",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			speed, err := strconv.ParseFloat(args[1], 64)
			if err != nil || math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
				return usageError("invalid speed %q", args[1])
			}
			return e.clipEdit(cmd, args[0], func(s *editor.Session) error {
				s.UpdateClip(args[0], editor.ClipPatch{Speed: &speed})
				return nil
			})
		},
	}
}

func newClipDuplicateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a clip to start right after itself",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.clipCreate(cmd, args[0], "duplicate", func(s *editor.Session) string {
				return s.DuplicateClip(args[0])
			})
		},
	}
}

func newClipDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.clipEdit(cmd, args[0], func(s *editor.Session) error {
				s.DeleteClip(args[0])
				return nil
			})
		},
	}
}

func newClipLinkCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "link <id> <id>",
		Short: "Link two clips so they move and split together",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.clipEdit(cmd, args[0], func(s *editor.Session) error {
				if _, ok := s.Snapshot().Clip(args[1]); !ok {
					return notFound("clip", args[1])
				}
				s.LinkClips(args[0], args[1])
				return nil
			})
		},
	}
}

func newClipUnlinkCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <id>",
		Short: "Break a clip's link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.clipEdit(cmd, args[0], func(s *editor.Session) error {
				s.UnlinkClip(args[0])
				return nil
			})
		},
	}
}

func newClipDetachAudioCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "detach-audio <id> <audio-track-id>",
		Short: "Move a video clip's audio onto an audio track as a linked clip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.clipCreate(cmd, args[0], "detach audio from", func(s *editor.Session) string {
				return s.DetachAudio(args[0], args[1])
			})
		},
	}
}
