package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"media-gallery/locale"
	"media-gallery/presenter"
)

var parseCmd = &cobra.Command{
	Use:   "parse [manifest]",
	Short: "Parse a manifest and print the content as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  Parse,
}

var cardsCmd = &cobra.Command{
	Use:   "cards [manifest]",
	Short: "Print the sorted, localized cards of a manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE:  Cards,
}

func init() {
	parseCmd.Flags().Bool("compact", false, "print compact JSON")
	rootCmd.AddCommand(parseCmd)

	cardsCmd.Flags().StringP("lang", "l", "", "language (cn or en)")
	rootCmd.AddCommand(cardsCmd)
}

func Parse(cmd *cobra.Command, args []string) error {
	ctx, cfg, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	content, err := newParser(cfg).ParseFile(ctx, manifestArg(cfg, args))
	if err != nil {
		return err
	}

	compact, _ := cmd.Flags().GetBool("compact")
	var data []byte
	if compact {
		data, err = json.Marshal(content)
	} else {
		data, err = json.MarshalIndent(content, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("errore serializzazione: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	if n := len(content.Diagnostics); n > 0 {
		log.FromContext(ctx).Warn("righe risorsa scartate", "count", n)
	}
	return nil
}

func Cards(cmd *cobra.Command, args []string) error {
	ctx, cfg, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	lang := cfg.DefaultLanguage()
	if raw, _ := cmd.Flags().GetString("lang"); raw != "" {
		lang, err = locale.Parse(raw)
		if err != nil {
			return err
		}
	}

	content, err := newParser(cfg).ParseFile(ctx, manifestArg(cfg, args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	view := presenter.ForContent(content).Present(content, lang)
	if view.Empty {
		fmt.Fprintln(out, view.EmptyMessage)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, card := range view.Cards {
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n",
			card.OrderLabel, card.Icon, card.TypeLabel, card.DisplayDescription, card.Filepath,
			fileSize(cfg.Content.Root, card.Filepath))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s · %d\n", strings.TrimSpace(view.Badge), len(view.Cards))
	return nil
}

// fileSize restituisce la dimensione leggibile della risorsa, "-" se manca
func fileSize(root, path string) string {
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		return "-"
	}
	return humanize.Bytes(uint64(info.Size()))
}
