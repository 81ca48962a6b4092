package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"stowaway/internal/catalog"
	"stowaway/internal/workspace"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var fullPaths bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the entry list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				out := cmd.OutOrStdout()
				entries := ws.Registry().Snapshot()
				if len(entries) == 0 {
					fmt.Fprintf(out, "No entries in %s\n", ws.Path())
					return nil
				}
				display := filepath.Base
				if fullPaths {
					display = func(p string) string { return p }
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						strconv.Itoa(e.Sequence),
						displayPath(e.HostPath, display),
						displayPath(e.PayloadPath, display),
						displayPath(e.GeneratedPath, display),
						yesNo(e.HasPayload),
						yesNo(e.Uploaded),
						e.Description,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Host", "Payload", "Generated", "Injected", "Uploaded", "Description"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&fullPaths, "full", false, "Show full paths instead of base names")
	return cmd
}

func displayPath(path string, display func(string) string) string {
	if path == "" {
		return "-"
	}
	return display(path)
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var payload string
	var description string

	cmd := &cobra.Command{
		Use:   "add [host...]",
		Short: "Append entries to the list",
		Long:  "Append one entry per host file, or a single empty entry when no host is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				hosts := args
				if len(hosts) == 0 {
					hosts = []string{""}
				}
				for _, host := range hosts {
					if err := catalog.ValidateHostPath(host); err != nil {
						return err
					}
				}
				out := cmd.OutOrStdout()
				registry := ws.Registry()
				for _, host := range hosts {
					idx, err := registry.AddEntry(catalog.Entry{
						HostPath:    absPath(host),
						PayloadPath: absPath(payload),
						Description: description,
					})
					if err != nil {
						return err
					}
					entry, _ := registry.Get(idx)
					fmt.Fprintf(out, "Added #%d %s\n", entry.Sequence, displayPath(entry.HostPath, filepath.Base))
				}
				return ws.Save()
			})
		},
	}
	cmd.Flags().StringVarP(&payload, "payload", "p", "", "Payload file to embed")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Free-form description")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <entry...>",
		Aliases: []string{"remove"},
		Short:   "Remove entries and renumber the rest",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				indices, err := resolveSequences(ws.Registry(), args)
				if err != nil {
					return err
				}
				if err := ws.Registry().RemoveMany(indices); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries; %d remain\n", len(uniqueInts(indices)), ws.Registry().Len())
				return ws.Save()
			})
		},
	}
}

func newSetCommand(ctx *commandContext) *cobra.Command {
	var host, payload, generated, description string
	var hasPayload, uploaded bool

	cmd := &cobra.Command{
		Use:   "set <entry>",
		Short: "Edit fields of one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			changed := false
			for _, name := range []string{"host", "payload", "generated", "description", "has-payload", "uploaded"} {
				changed = changed || flags.Changed(name)
			}
			if !changed {
				return errors.New("nothing to set; pass at least one field flag")
			}
			if flags.Changed("host") {
				if err := catalog.ValidateHostPath(host); err != nil {
					return err
				}
			}
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				registry := ws.Registry()
				indices, err := resolveSequences(registry, args)
				if err != nil {
					return err
				}
				idx := indices[0]
				err = registry.Update(idx, func(e *catalog.Entry) {
					if flags.Changed("host") {
						e.HostPath = absPath(host)
					}
					if flags.Changed("payload") {
						e.PayloadPath = absPath(payload)
					}
					if flags.Changed("generated") {
						e.GeneratedPath = absPath(generated)
					}
					if flags.Changed("description") {
						e.Description = description
					}
					if flags.Changed("has-payload") {
						e.HasPayload = hasPayload
					}
					if flags.Changed("uploaded") {
						e.Uploaded = uploaded
					}
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated #%s\n", args[0])
				return ws.Save()
			})
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Host media file")
	cmd.Flags().StringVar(&payload, "payload", "", "Payload file to embed")
	cmd.Flags().StringVar(&generated, "generated", "", "Previously generated output file")
	cmd.Flags().StringVar(&description, "description", "", "Free-form description")
	cmd.Flags().BoolVar(&hasPayload, "has-payload", false, "Mark whether the payload is already embedded")
	cmd.Flags().BoolVar(&uploaded, "uploaded", false, "Mark whether the output was uploaded")
	return cmd
}

// absPath makes non-empty paths absolute so list files stay valid from any
// working directory.
func absPath(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func uniqueInts(values []int) map[int]struct{} {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
