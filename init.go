package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/procmap/internal/config"
)

const (
	sentinelStart = "<!-- procmap:start -->"
	sentinelEnd   = "<!-- procmap:end -->"
)

// newInitCmd implements `procmap init`, which writes a default configuration
// file and, optionally, a procmap usage section in an agent instructions file.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		dryRun   bool
		force    bool
		agentDoc string
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default " + config.FileName,
		Long: `Write the default procmap configuration to path (default ./` + config.FileName + `).
An existing file is left alone unless --force is given.

With --agent-doc, also write a procmap usage section to that markdown file
(for example CLAUDE.md). The section is wrapped in sentinel comments so it is
updated in place on later runs without touching surrounding content.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) > 0 {
				path = args[0]
			}
			if err := writeConfig(path, dryRun, force, stdout, stderr); err != nil {
				return err
			}
			if agentDoc != "" {
				return writeAgentSection(agentDoc, dryRun, stdout, stderr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying any file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cmd.Flags().StringVar(&agentDoc, "agent-doc", "", "also write a usage section to this markdown file")
	return cmd
}

func writeConfig(path string, dryRun, force bool, stdout, stderr io.Writer) error {
	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	if dryRun {
		_, _ = stdout.Write(data)
		return nil
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(stderr, "wrote default configuration to %s\n", path)
	return nil
}

func writeAgentSection(path string, dryRun bool, stdout, stderr io.Writer) error {
	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), generateSection())

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(stderr, "wrote procmap section to %s\n", path)
	return nil
}

// generateSection returns the sentinel-wrapped procmap usage block.
func generateSection() string {
	body := `## procmap: duplicated AL procedures

Run ` + "`procmap --format toon`" + ` from the directory holding the AL repositories
before changing a codeunit. It lists every *.CodeUnit.al file name found under
more than one LLB directory and, per file, which procedures exist in two or
more repositories (repeated) and which exist in only one (unique).

**Run it:**
` + "```" + `bash
procmap --format toon                         # every file
procmap --format toon --file Sales            # file names containing "Sales"
procmap --format toon --only repeated -n 20   # 20 most duplicated files
` + "```" + `

**All flags:** ` + "`procmap --help`" + `

**How to use the output:**

1. A change to a repeated procedure usually has to be made in every
   repository listed in its ` + "`repositories`" + ` column.
2. Use the ` + "`occurrences`" + ` table for exact lines instead of searching.
3. Unique procedures are local to one repository; edit them in place.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
