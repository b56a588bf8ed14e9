package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/go-dawgbowl-metrics/internal/aggregator"
	"github.com/pable/go-dawgbowl-metrics/internal/hitrate"
	"github.com/pable/go-dawgbowl-metrics/internal/model"
)

const analyzeSystemPrompt = `You are a fantasy football best-ball contest analyst. You are given structured
data from a contest analytics tool and a question from the user.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable: focus on drafting decisions the data supports.
- Small populations are noisy; call out hit rates built on few entries.

Glossary:
- Entry: one six-player draft with a finishing place in a weekly contest.
- Elite tiers: Top 0.1% / 0.5% / 1% of a week's entries by place (cutoff is
  max(1, round(fraction * entries)); ties at the cutoff are all included).
- Rate: a user's tier finishes divided by their entries across all weeks.
- Hit rate: elite entries containing a player (or pair) divided by all entries
  containing it, as a percentage. The trait scan uses the top "fraction" of
  each week as the elite set.`

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzeWeek   string
	analyzeTop    int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <question> [contest.csv...]",
	Short: "AI-powered grounded analysis (requires ANTHROPIC_API_KEY)",
	Long: `Send the user summary and the trait scan tables to the Anthropic API as
JSON and stream back an answer to the question.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Anthropic model to use (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().StringVar(&analyzeWeek, "week", model.AllWeeks, "restrict the context to one week")
	analyzeCmd.Flags().IntVar(&analyzeTop, "top", 25, "rows per table included in the context")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	question := args[0]
	ds, err := load(args[1:])
	if err != nil {
		return err
	}
	if err := checkWeek(ds.Entries, analyzeWeek); err != nil {
		return err
	}
	mode, err := aggregator.ParseSortMode(cfg.SortMode)
	if err != nil {
		return err
	}

	contextJSON, err := buildAnalyzeContext(ds.Entries, analyzeWeek, mode, cfg.MinEntries, cfg.TraitFraction, analyzeTop)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	log.Debug("analyze context built", "bytes", len(contextJSON), "week", analyzeWeek)

	modelID := cfg.AnthropicModel
	if analyzeModel != "" {
		modelID = analyzeModel
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, modelID, contextJSON, question)
}

// buildAnalyzeContext serialises the user summary and per-week trait scans
// into compact JSON. Each table keeps at most top rows.
func buildAnalyzeContext(entries []model.Entry, week string, mode aggregator.SortMode, minEntries int, fraction float64, top int) (string, error) {
	type userEntry struct {
		Username string  `json:"username"`
		Entries  int     `json:"entries"`
		Top01    int     `json:"top_0_1"`
		Top05    int     `json:"top_0_5"`
		Top1     int     `json:"top_1"`
		Rate1Pct float64 `json:"top_1_rate_pct"`
	}
	type playerEntry struct {
		Player  string  `json:"player"`
		Elite   int     `json:"elite"`
		All     int     `json:"all"`
		HitRate float64 `json:"hit_rate_pct"`
	}
	type pairEntry struct {
		Players [2]string `json:"players"`
		Elite   int       `json:"elite"`
		All     int       `json:"all"`
		HitRate float64   `json:"hit_rate_pct"`
	}
	type weekEntry struct {
		Week    string        `json:"week"`
		Entries int           `json:"entries"`
		Cutoff  int           `json:"elite_cutoff"`
		Players []playerEntry `json:"players"`
		Pairs   []pairEntry   `json:"pairs"`
	}

	summary := aggregator.Filter(aggregator.Summarize(entries, week), aggregator.SummaryFilter{MinEntries: minEntries})
	aggregator.Sort(summary, mode)
	users := make([]userEntry, 0, min(top, len(summary)))
	for i, s := range summary {
		if i == top {
			break
		}
		users = append(users, userEntry{
			Username: s.Username,
			Entries:  s.TotalEntries,
			Top01:    s.Count01,
			Top05:    s.Count05,
			Top1:     s.Count1,
			Rate1Pct: round2(s.Rate1 * 100),
		})
	}

	weeks := aggregator.WeekOptions(entries)[1:]
	if week != "" && week != model.AllWeeks {
		weeks = []string{week}
	}
	scans := make([]weekEntry, 0, len(weeks))
	for _, w := range weeks {
		r := hitrate.Scan(w, aggregator.ForWeek(entries, w), fraction)
		we := weekEntry{Week: w, Entries: r.TotalEntries, Cutoff: r.Cutoff}
		for i, p := range r.Players {
			if i == top {
				break
			}
			we.Players = append(we.Players, playerEntry{p.Player, p.EliteCount, p.PopulationCount, round2(p.HitRate)})
		}
		for i, p := range r.Pairs {
			if i == top {
				break
			}
			we.Pairs = append(we.Pairs, pairEntry{[2]string{p.PlayerA, p.PlayerB}, p.EliteCount, p.PopulationCount, round2(p.HitRate)})
		}
		scans = append(scans, we)
	}

	doc := map[string]interface{}{
		"subject":        "contest",
		"week":           week,
		"entries":        len(aggregator.ForWeek(entries, week)),
		"sorted_by":      string(mode),
		"min_entries":    minEntries,
		"elite_fraction": fraction,
		"users":          users,
		"trait_scans":    scans,
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// round2 rounds a float64 to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed, check your API key")
		}
		log.Error("anthropic stream failed", "model", modelID, "err", err)
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
