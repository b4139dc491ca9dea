package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/RowanDark/cifra/internal/cryptanalysis"
	"github.com/RowanDark/cifra/internal/dictionary"
	"github.com/RowanDark/cifra/internal/env"
	"github.com/RowanDark/cifra/internal/history"
	"github.com/RowanDark/cifra/internal/logging"
	"github.com/RowanDark/cifra/internal/output"
	"github.com/RowanDark/cifra/internal/redact"
	"github.com/RowanDark/cifra/internal/service"
)

func (c *cli) runCrack(args []string) int {
	fs := flag.NewFlagSet("crack", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	dictPath := fs.String("dict", c.cfg.DictionaryPath, "reference word list, one word per line")
	workers := fs.Int("workers", c.cfg.Crack.Workers, "parallel workers (1 scans sequentially)")
	preview := fs.Int("preview", c.cfg.PreviewChars, "characters of plaintext to print (0 prints everything)")
	noHistory := fs.Bool("no-history", false, "do not record the run")
	remote := fs.Bool("remote", false, "ask cifrad instead of cracking locally")
	server := fs.String("server", c.cfg.Server.Addr, "cifrad address for -remote")
	token := fs.String("token", "", "bearer token for -remote (default $CIFRA_TOKEN)")
	var in inputFlags
	var out outputFlags
	in.register(fs)
	out.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *workers < 1 {
		fmt.Fprintln(c.stderr, "error: -workers must be at least 1")
		return 2
	}

	text, source, err := in.read()
	if err != nil {
		return c.fail(err)
	}

	var result crackResult
	if *remote {
		tok := *token
		if tok == "" {
			tok, _ = env.Lookup("CIFRA_TOKEN")
		}
		result, err = c.crackRemote(*server, tok, text, source)
	} else {
		result, err = c.crackLocal(*dictPath, *workers, text, source, !*noHistory)
	}
	if err != nil {
		return c.fail(err)
	}
	if result.warning != "" {
		fmt.Fprintf(c.stderr, "warning: %s\n", result.warning)
	}

	fmt.Fprintf(c.stdout, "Key found: %d (score %d)\n", result.shift, result.score)
	// -stdout prints the full plaintext instead of the preview.
	if !out.toStdout {
		fmt.Fprintln(c.stdout, "=== Start of decrypted text ===")
		fmt.Fprintln(c.stdout, redact.Preview(result.plaintext, *preview))
		fmt.Fprintln(c.stdout, "=== End of preview ===")
	}

	if !out.toStdout && in.file == "" && out.path == "" {
		return 0
	}
	if err := c.deliver(in, out, result.plaintext, output.DecryptedName); err != nil {
		return c.fail(err)
	}
	return 0
}

type crackResult struct {
	runID     string
	shift     int
	score     int
	plaintext string
	warning   string
}

func (c *cli) crackLocal(dictPath string, workers int, text, source string, record bool) (crackResult, error) {
	words, err := dictionary.LoadFile(dictPath)
	if err != nil {
		return crackResult{}, err
	}
	c.emit(logging.AuditEvent{
		EventType: logging.EventDictionaryLoad,
		Metadata:  map[string]any{"path": dictPath, "words": words.Len()},
	})

	mode := "sequential"
	if workers > 1 {
		mode = "parallel"
	}
	runID := history.NewRunID()
	start := time.Now()
	best, err := cryptanalysis.RecoverParallel(c.ctx, text, words, c.cfg.Keyspace(), workers)
	elapsed := time.Since(start)

	result := crackResult{runID: runID}
	if errors.Is(err, cryptanalysis.ErrEmptyDictionary) {
		result.warning = fmt.Sprintf("%s: %v", dictPath, err)
	} else if err != nil {
		return crackResult{}, err
	}
	result.shift, result.score, result.plaintext = best.Shift, best.Score, best.Plaintext
	c.logger.Debug("crack finished", "run_id", runID, "shift", best.Shift, "score", best.Score, "duration", elapsed)

	c.emit(logging.AuditEvent{
		EventType: logging.EventCrackRun,
		RunID:     runID,
		Reason:    result.warning,
		Metadata: map[string]any{
			"source":      source,
			"shift":       best.Shift,
			"score":       best.Score,
			"text_length": len(text),
			"mode":        mode,
			"duration_ms": elapsed.Milliseconds(),
		},
	})

	if record {
		c.recordRun(history.Run{
			ID:         runID,
			Source:     source,
			Shift:      best.Shift,
			Score:      best.Score,
			TextLength: len(text),
			Dictionary: words.Len(),
			Mode:       mode,
		})
	}
	return result, nil
}

// recordRun stores run in the history database. Failures are logged, not
// fatal: the crack itself succeeded.
func (c *cli) recordRun(run history.Run) {
	store, err := history.Open(c.cfg.HistoryPath)
	if err != nil {
		c.logger.Warn("open history", "path", c.cfg.HistoryPath, "error", err)
		return
	}
	defer store.Close()
	if _, err := store.Record(c.ctx, run); err != nil {
		c.logger.Warn("record crack run", "run_id", run.ID, "error", err)
	}
}

func (c *cli) crackRemote(addr, token, text, source string) (crackResult, error) {
	if strings.TrimSpace(addr) == "" {
		return crackResult{}, fmt.Errorf("%w: -server is required with -remote", errUsage)
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if token != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(service.TokenCredentials(token)))
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return crackResult{}, fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
	defer cancel()
	resp, err := service.NewClient(conn).Crack(ctx, service.CrackRequest{Text: text, Source: source})
	if err != nil {
		return crackResult{}, fmt.Errorf("remote crack: %w", err)
	}
	return crackResult{
		runID:     resp.RunID,
		shift:     resp.Shift,
		score:     resp.Score,
		plaintext: resp.Plaintext,
		warning:   resp.Warning,
	}, nil
}

func (c *cli) runDetect(args []string) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	dictPath := fs.String("dict", c.cfg.DictionaryPath, "reference word list, one word per line")
	top := fs.Int("top", 5, "number of candidates to print (0 prints all)")
	minConfidence := fs.Float64("min-confidence", 0, "drop candidates below this score/token ratio")
	var in inputFlags
	in.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	text, _, err := in.read()
	if err != nil {
		return c.fail(err)
	}
	words, err := dictionary.LoadFile(*dictPath)
	if err != nil {
		return c.fail(err)
	}

	detector := cryptanalysis.Detector{Keyspace: c.cfg.Keyspace(), MinConfidence: *minConfidence}
	rankings, err := detector.Rank(c.ctx, text, words)
	if errors.Is(err, cryptanalysis.ErrEmptyDictionary) {
		fmt.Fprintf(c.stderr, "warning: %s: %v\n", *dictPath, err)
	} else if err != nil {
		return c.fail(err)
	}
	if *top > 0 && len(rankings) > *top {
		rankings = rankings[:*top]
	}

	fmt.Fprintf(c.stdout, "%-6s%7s%8s%12s  %s\n", "Shift", "Score", "Tokens", "Confidence", "Preview")
	for _, r := range rankings {
		fmt.Fprintf(c.stdout, "%-6d%7d%8d%11.1f%%  %s\n", r.Shift, r.Score, r.Tokens, r.Confidence*100, oneLine(redact.Preview(r.Plaintext, 40)))
	}
	return 0
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
