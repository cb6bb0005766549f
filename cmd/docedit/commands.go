package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docedit/internal/app"
	"github.com/dgallion1/docedit/internal/approval"
	"github.com/dgallion1/docedit/internal/config"
	"github.com/dgallion1/docedit/internal/llm"
	"github.com/dgallion1/docedit/internal/tools"
)

type cliOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "docedit",
		Short:         "Index and edit Word documents with a tool-calling assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	var export bool
	indexCmd := &cobra.Command{
		Use:   "index <path>",
		Short: "Rebuild the paragraph index and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, opts, args[0], tools.IndexDocument, map[string]any{"export": export})
		},
	}
	indexCmd.Flags().BoolVar(&export, "export", false, "also write "+tools.ExportFile)

	outlineCmd := &cobra.Command{
		Use:   "outline <path>",
		Short: "Print the heading outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, opts, args[0], tools.GetDocumentOutline, nil)
		},
	}

	var caseSensitive bool
	searchCmd := &cobra.Command{
		Use:   "search <path> <query>",
		Short: "Find paragraphs containing text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, opts, args[0], tools.SearchDocument, map[string]any{
				"query":          strings.Join(args[1:], " "),
				"case_sensitive": caseSensitive,
			})
		},
	}
	searchCmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "match case exactly")

	tocCmd := &cobra.Command{
		Use:   "toc <path>",
		Short: "Print a table of contents built from the outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, opts, args[0], tools.UpdateTOC, nil)
		},
	}

	chatCmd := &cobra.Command{
		Use:   "chat <path> [message]",
		Short: "Talk to the assistant about a document, approving each edit",
		Long: `Runs the assistant against a document. With a message, runs that one
request and exits; without one, reads a message per line from stdin.
Edits are shown with a diff and applied only after you answer yes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts, args[0], strings.Join(args[1:], " "))
		},
	}

	root.AddCommand(indexCmd, outlineCmd, searchCmd, tocCmd, chatCmd)
	return root
}

func (o *cliOptions) logger(cmd *cobra.Command) *slog.Logger {
	if o.verbose {
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runTool(cmd *cobra.Command, opts *cliOptions, document, name string, args map[string]any) error {
	cfg := config.Load()
	a, err := app.New(cmd.Context(), cfg, opts.logger(cmd), false)
	if err != nil {
		return err
	}
	defer a.Close()

	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	ws := &tools.Workspace{Path: document}
	result := a.Gateway.Run(cmd.Context(), ws, name, raw)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if f, ok := result.(tools.Failure); ok {
		return fmt.Errorf("%s: %s", name, f.Message)
	}
	return nil
}

func runChat(cmd *cobra.Command, opts *cliOptions, document, message string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, opts.logger(cmd), true)
	if err != nil {
		return err
	}
	defer a.Close()

	if message != "" {
		outcome, err := a.Runner.RunWith(ctx, document, []llm.Message{llm.UserMessage(message)},
			approval.NewPromptApprover(cmd.InOrStdin(), cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), outcome.Reply)
		return nil
	}
	return chatLoop(ctx, a.Runner, document, cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatLoop reads one user message per line until EOF or "exit". The same
// reader answers approval prompts.
func chatLoop(ctx context.Context, runner *approval.Runner, document string, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	approver := approval.NewPromptApprover(reader, out)

	fmt.Fprintf(out, "Editing %s. Type \"exit\" to quit.\n", document)
	var history []llm.Message
	for {
		fmt.Fprint(out, "you> ")
		line, err := reader.ReadString('\n')
		text := strings.TrimSpace(line)
		if text == "exit" || (err != nil && text == "") {
			if err != nil && err != io.EOF {
				return err
			}
			return nil
		}
		if text == "" {
			continue
		}

		outcome, runErr := runner.RunWith(ctx, document, append(history, llm.UserMessage(text)), approver)
		if runErr != nil {
			return runErr
		}
		history = outcome.Messages
		document = outcome.Document
		fmt.Fprintf(out, "assistant> %s\n", outcome.Reply)
	}
}
