// cmd/scheme-chat/chat.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"scheme-assistant/internal/catalog"
	"scheme-assistant/internal/common/config"
	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/observability"
	"scheme-assistant/internal/dialogue"
	"scheme-assistant/internal/models"
	"scheme-assistant/internal/render"
)

var (
	chatCatalog string
	chatConfig  string
	chatLang    string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation on stdin",
	Long: `Runs one conversation against a catalog file. Without --config the replies
that would go to the text generator are printed as their raw context, which is
enough to follow the state machine offline. Type /reset to start over and
/quit to leave.`,
	Args: cobra.NoArgs,
	RunE: runChatCmd,
}

func init() {
	chatCmd.Flags().StringVarP(&chatCatalog, "catalog", "c", "data/schemes.json", "catalog file (json or yaml)")
	chatCmd.Flags().StringVar(&chatConfig, "config", "", "config file providing the renderer backend")
	chatCmd.Flags().StringVarP(&chatLang, "lang", "l", "te", "reply language (te or en)")
}

func cliLogger() logger.Logger {
	if verbose {
		return logger.NewStructured("debug", "console")
	}
	return logger.NewNoOpLogger()
}

func runChatCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := cliLogger()

	cat, err := catalog.Load(ctx, catalog.FileSource{Path: chatCatalog}, log)
	if err != nil {
		return err
	}

	lang := render.ParseLanguage(chatLang)
	var renderer render.Renderer = contextRenderer{}
	if chatConfig != "" {
		cfg, err := config.LoadFromFile(chatConfig)
		if err != nil {
			return err
		}
		gen, err := render.NewGenerator(ctx, cfg.Renderer, nil)
		if err != nil {
			return err
		}
		renderer = render.NewService(gen, lang, config.GetDuration(cfg.Dialogue.RenderTimeout), log)
	}

	engine := dialogue.NewEngine(cat, renderer, dialogue.Options{Language: lang}, log, observability.NewNoop())
	return chat(ctx, engine, os.Stdin, cmd.OutOrStdout())
}

// contextRenderer stands in for a text generator by echoing what it would
// have been given.
type contextRenderer struct{}

func (contextRenderer) Render(_ context.Context, p render.Prompt) string {
	return strings.TrimSpace(p.Context)
}

func chat(ctx context.Context, engine *dialogue.Engine, in io.Reader, out io.Writer) error {
	sess := dialogue.NewSession(uuid.NewString())
	scanner := bufio.NewScanner(in)

	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "/quit", "/exit":
			return nil
		case "/reset":
			sess.Reset()
			fmt.Fprintln(out, "[session reset]")
		case "/state":
			md := engine.Metadata(sess)
			fmt.Fprintf(out, "[%s] %s\n", md.State, describe(md.Profile))
		default:
			reply, md := engine.Process(ctx, sess, line)
			fmt.Fprintf(out, "%s\n[%s]\n", reply, md.State)
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func describe(p models.Profile) string {
	var parts []string
	for _, f := range []models.Field{models.FieldAge, models.FieldRegion, models.FieldOccupation, models.FieldIncome, models.FieldGender} {
		if p.IsSet(f) {
			parts = append(parts, string(f)+"="+p.Value(f))
		}
	}
	if len(parts) == 0 {
		return "(empty profile)"
	}
	return strings.Join(parts, " ")
}
