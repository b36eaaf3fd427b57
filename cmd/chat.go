package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scholar-chat/internal/helper"
	"scholar-chat/internal/session"
)

const chatHelp = `Commands:
  /load PATH...  index documents (after /reset if something is indexed)
  /files         show the processed documents
  /sources       show the sources of the last answer
  /info          show the index details
  /set [k=v...]  show or change chunk_size, chunk_overlap, top_k
                 (chunking changes apply to the next /load)
  /history       show the conversation
  /reset         clear documents, index and history
  /quit          leave
Anything else is asked as a question.`

var chatCmd = &cobra.Command{
	Use:   "chat [FILE_OR_DIR...]",
	Short: "Interactive question answering over documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := newSession(ctx)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			if err := processFiles(ctx, cmd.OutOrStdout(), sess, args); err != nil {
				printError(cmd.ErrOrStderr(), err)
			}
		}
		return runChat(ctx, sess, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runChat(ctx context.Context, sess *session.Session, in io.Reader, out io.Writer) error {
	titleColor.Fprintln(out, "Chat with your documents. Type /help for commands.")
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			result, err := sess.Ask(ctx, line)
			if err != nil {
				printError(out, err)
				continue
			}
			printAnswer(out, result)
			continue
		}

		command, rest, _ := strings.Cut(line, " ")
		switch command {
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(out, chatHelp)
		case "/load":
			paths := strings.Fields(rest)
			if len(paths) == 0 {
				printError(out, fmt.Errorf("usage: /load PATH..."))
				continue
			}
			if err := processFiles(ctx, out, sess, paths); err != nil {
				printError(out, err)
			}
		case "/files":
			files := sess.Files()
			if len(files) == 0 {
				dimColor.Fprintln(out, "No documents processed.")
				continue
			}
			printFiles(out, files)
		case "/sources":
			printSources(out, sess.LastSources())
		case "/info":
			if !sess.Indexed() {
				dimColor.Fprintln(out, "Nothing indexed.")
				continue
			}
			info, _ := sess.Info()
			helper.FprettyPrint(out, info)
		case "/set":
			settings, err := parseSettings(sess.Settings(), strings.Fields(rest))
			if err == nil {
				err = sess.SetSettings(settings)
			}
			if err != nil {
				printError(out, err)
				continue
			}
			printSettings(out, sess.Settings())
		case "/history":
			helper.FprettyPrint(out, sess.History())
		case "/reset":
			sess.Reset()
			dimColor.Fprintln(out, "Session reset.")
		default:
			printError(out, fmt.Errorf("unknown command %s, type /help", command))
		}
	}
}

// parseSettings applies key=value pairs on top of current.
func parseSettings(current session.Settings, pairs []string) (session.Settings, error) {
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return current, fmt.Errorf("expected key=value, got %q", pair)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return current, fmt.Errorf("%s: %q is not a number", key, value)
		}
		switch key {
		case "chunk_size":
			current.ChunkSize = n
		case "chunk_overlap":
			current.ChunkOverlap = n
		case "top_k":
			current.TopK = n
		default:
			return current, fmt.Errorf("unknown setting %q", key)
		}
	}
	return current, nil
}
