package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reel/internal/archive"
	"github.com/mesh-intelligence/reel/internal/editor"
	"github.com/mesh-intelligence/reel/internal/reconcile"
	"github.com/mesh-intelligence/reel/pkg/types"
)

func newProjectCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create, inspect and move projects",
	}
	cmd.AddCommand(
		newProjectNewCmd(e),
		newProjectListCmd(e),
		newProjectShowCmd(e),
		newProjectRenameCmd(e),
		newProjectFormatCmd(e),
		newProjectExportCmd(e),
		newProjectImportCmd(e),
	)
	return cmd
}

func newProjectNewCmd(e *env) *cobra.Command {
	var (
		format string
		fps    int
	)
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !types.ValidFormat(format) {
				return usageError("unknown format %q", format)
			}
			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			s, _ := e.newSession(store)
			id := s.Create(args[0], format, fps)
			if err := s.Save(cmd.Context()); err != nil {
				return fmt.Errorf("save project %s: %w", id, err)
			}
			return output(cmd, map[string]string{"project_id": id}, id)
		},
	}
	cmd.Flags().StringVar(&format, "format", types.FormatYouTube, "output format: youtube, youtube_4k, shorts, square, twitter, custom")
	cmd.Flags().IntVar(&fps, "fps", types.DefaultFrameRate, "frame rate")
	return cmd
}

func newProjectListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			projects, err := reconcile.ListProjects(cmd.Context(), store)
			if err != nil {
				return err
			}
			var b strings.Builder
			tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tFORMAT\tSIZE")
			for _, p := range projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\n", p.ProjectID, p.Name, p.OutputFormat, p.Width, p.Height)
			}
			tw.Flush()
			return output(cmd, projects, strings.TrimRight(b.String(), "\n"))
		},
	}
}

func newProjectShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withProject(cmd, func(s *editor.Session) error {
				p := s.Snapshot()
				text := fmt.Sprintf("%s (%s)\nformat:   %s %dx%d @ %dfps\nduration: %dms\ntracks:   %d\nclips:    %d\neffects:  %d",
					p.Project.Name, p.Project.ProjectID,
					p.Project.OutputFormat, p.Project.Width, p.Project.Height, p.Project.FrameRate,
					p.Project.DurationMs,
					len(p.Tracks),
					len(p.Clips),
					len(p.ZoomClips)+len(p.BlurClips)+len(p.PanClips)+len(p.TransformClips))
				return output(cmd, p, text)
			})
		},
	}
}

func newProjectRenameCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name>",
		Short: "Rename the current project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withProject(cmd, func(s *editor.Session) error {
				s.RenameProject(args[0])
				return nil
			})
		},
	}
}

func newProjectFormatCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "format <format>",
		Short: "Change the output format of the current project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !types.ValidFormat(args[0]) {
				return usageError("unknown format %q", args[0])
			}
			return e.withProject(cmd, func(s *editor.Session) error {
				s.SetFormat(args[0])
				return nil
			})
		},
	}
}

func newProjectExportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the current project to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := resolveProject(cmd.Context(), store)
			if err != nil {
				return err
			}
			if err := archive.Export(cmd.Context(), store, id, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", id, args[0])
			return nil
		},
	}
}

func newProjectImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Save the project held in a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			data, err := archive.Import(cmd.Context(), reconcile.New(store, e.logger), args[0])
			if err != nil {
				return err
			}
			id := data.Project.ProjectID
			return output(cmd, map[string]string{"project_id": id}, id)
		},
	}
}
