package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/hlextract/internal/config"
	"github.com/forPelevin/hlextract/internal/logging"
	"github.com/forPelevin/hlextract/internal/pipeline"
	"github.com/forPelevin/hlextract/internal/usecase"
)

const urlPrompt = "Insira a URL do YouTube: "

var errRunFailed = errors.New("run failed")

func run(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	outDir, _ := cmd.Flags().GetString("out")
	label, _ := cmd.Flags().GetString("label")
	verbose, _ := cmd.Flags().GetBool("verbose")

	log := logging.New(cmd.ErrOrStderr(), verbose)

	cfg, used, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.ApplyOverrides(config.Overrides{OutputDir: outDir, Label: label}); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if used != "" {
		log.Debug().Str("path", used).Msg("config loaded")
	}

	var url string
	if len(args) == 1 {
		url = strings.TrimSpace(args[0])
	} else {
		url, err = promptURL(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
	}
	if url == "" {
		return errors.New("url is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutMinutes)*time.Minute)
	defer cancel()

	res, err := pipeline.Run(ctx, cfg, url, log)
	if err != nil {
		return err
	}

	ev := log.Info()
	if res.Outcome.Failed() {
		ev = log.Error().Err(res.Err)
	}
	ev.Str("outcome", res.Outcome.String()).
		Int("segments", res.Segments).
		Int("highlights", len(res.Highlights)).
		Int("clips", len(res.Clips)).
		Bool("source_kept", res.SourceKept).
		Msg("run finished")

	if len(res.Clips) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), clipSummary(res))
	}
	if res.Outcome.Failed() {
		return fmt.Errorf("%w: %s", errRunFailed, res.Outcome)
	}
	return nil
}

// promptURL asks for a single URL on in, the way the tool behaves when
// started without arguments.
func promptURL(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, urlPrompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read url: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func clipSummary(res usecase.Result) string {
	rows := make([][]string, 0, len(res.Clips))
	for _, c := range res.Clips {
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.Index),
			c.TimestampRange,
			c.Reason,
			c.OutputPath,
		})
	}
	return renderTable(
		[]string{"#", "Window (s)", "Reason", "Clip"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func configInit(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("path")
	force, _ := cmd.Flags().GetBool("force")
	if strings.TrimSpace(path) == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := config.WriteSample(path, force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote sample config to %s\n", path)
	return nil
}
