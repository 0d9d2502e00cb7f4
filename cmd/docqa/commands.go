package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"docqa/internal/console"
	"docqa/internal/service"
	"docqa/internal/tui"
)

func newRootCmd() *cobra.Command {
	var plain bool

	root := &cobra.Command{
		Use:   "docqa [document.txt]",
		Short: "Ask questions about a text document",
		Long: `docqa splits a text document into overlapping chunks, picks the chunks
that share the most words with your question and asks a hosted
question-answering model to answer from them.

The API token is read from the environment variable named by
answer_service.api_token_env (HF_API_TOKEN by default).`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive := !plain && isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
			m := modeOneShot
			if interactive {
				m = modeTUI
			}
			a, err := setup(cmd, m)
			if err != nil {
				return err
			}
			defer a.Close()

			sess := service.NewSession()
			notice := ""
			if len(args) == 1 {
				sess, err = a.svc.OpenFile(sess, args[0])
				if err != nil {
					return errors.New(service.UploadErrorMessage(err))
				}
				notice = service.DescribeDocument(sess)
			}

			if !interactive {
				out := cmd.OutOrStdout()
				if notice != "" {
					fmt.Fprintln(out, notice)
					fmt.Fprintln(out)
				}
				console.Run(cmd.Context(), a.svc, sess, cmd.InOrStdin(), cmd.OutOrStdout())
				return nil
			}
			_, err = tea.NewProgram(tui.New(cmd.Context(), a.svc, sess, notice), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}

	root.PersistentFlags().String("config", "", "path to YAML config file (default ./config.yaml or ~/.config/docqa/config.yaml)")
	root.PersistentFlags().String("log-level", "", "override log level (debug, info, warn, error)")
	root.Flags().BoolVar(&plain, "plain", false, "use the line-based chat instead of the full-screen interface")

	root.AddCommand(newAskCmd(), newInfoCmd())
	return root
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <document> <question>",
		Short: "Answer a single question about a document",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, modeOneShot)
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.svc.OpenFile(service.NewSession(), args[0])
			if err != nil {
				return errors.New(service.UploadErrorMessage(err))
			}
			out := cmd.OutOrStdout()
			question := strings.Join(args[1:], " ")
			_, reply := a.svc.Ask(cmd.Context(), sess, question)
			fmt.Fprintln(out, reply.Text)
			return reply.Err
		},
	}
}

func newInfoCmd() *cobra.Command {
	var showChunks bool

	cmd := &cobra.Command{
		Use:   "info <document>",
		Short: "Show statistics and chunking for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, modeInfo)
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.svc.OpenFile(service.NewSession(), args[0])
			if err != nil {
				return errors.New(service.UploadErrorMessage(err))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, service.DescribeDocument(sess))
			if !showChunks {
				return nil
			}
			for _, ch := range sess.Chunks {
				fmt.Fprintln(out)
				fmt.Fprintf(out, "[%d] offset=%d chars=%d\n", ch.Index, ch.Offset, utf8.RuneCountInString(ch.Text))
				fmt.Fprintln(out, ch.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showChunks, "chunks", false, "print every chunk with its offset")
	return cmd
}
