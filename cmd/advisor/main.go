package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wealthsim/advisor/internal/domain"
	"github.com/wealthsim/advisor/internal/feasibility"
	"github.com/wealthsim/advisor/internal/planner"
	"github.com/wealthsim/advisor/internal/policy"
	"github.com/wealthsim/advisor/internal/simulation"
)

const (
	appName = "advisor"
	version = "v1.0.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Deterministic decision and allocation policy for financial goals",
		Version: version,
		Long: `advisor is the deterministic policy layer of a financial planning product:
it ranks goals by feasibility, selects a priority goal with guarded capital
reallocations, and combines agent signals into a final action decision.`,
	}

	addGlobalFlags(rootCmd.PersistentFlags())
	cobra.OnInitialize(func() { applyLogLevel(rootCmd.PersistentFlags()) })

	rootCmd.AddCommand(newScoreCmd(), newPrioritizeCmd(), newSimulateCmd(), newDecideCmd(), newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")
}

func applyLogLevel(flags *pflag.FlagSet) {
	levelName, err := flags.GetString("log-level")
	if err != nil {
		return
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		log.Warn().Str("log_level", levelName).Msg("unknown log level, keeping info")
		return
	}
	zerolog.SetGlobalLevel(level)
}

func newScoreCmd() *cobra.Command {
	var profilePath string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Rank a profile's goals by feasibility",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			engine := feasibility.NewEngine(nil)
			result, err := engine.ScoreGoals(profile, time.Now())
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "path to a profile JSON file (default: built-in demo profile)")
	return cmd
}

func newPrioritizeCmd() *cobra.Command {
	var profilePath string
	var writeBack bool
	cmd := &cobra.Command{
		Use:   "prioritize",
		Short: "Select a priority goal and propose guarded reallocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			var persist planner.PersistFunc
			if writeBack && profilePath != "" {
				persist = func(updated domain.Profile) error {
					data, err := json.MarshalIndent(updated, "", "  ")
					if err != nil {
						return err
					}
					return os.WriteFile(profilePath, data, 0o644)
				}
			}
			pl := planner.New(feasibility.NewEngine(nil), planner.DefaultConfig())
			result, err := pl.Prioritize(profile, time.Now(), persist)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "path to a profile JSON file (default: built-in demo profile)")
	cmd.Flags().BoolVar(&writeBack, "write", false, "write the updated profile back to the profile file")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var profilePath, actionType, goalID, account, category string
	var amount float64
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Project the effect of a save, invest, or spend action",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			engine := simulation.New(nil)
			result, err := engine.Simulate(profile, domain.Action{
				Type:            domain.ActionType(actionType),
				Amount:          amount,
				GoalID:          goalID,
				TargetAccountID: domain.AccountID(account),
				Category:        category,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "path to a profile JSON file (default: built-in demo profile)")
	cmd.Flags().StringVar(&actionType, "type", "save", "action type: save, invest, or spend")
	cmd.Flags().Float64Var(&amount, "amount", 100, "action amount in dollars")
	cmd.Flags().StringVar(&goalID, "goal", "", "goal id the action supports")
	cmd.Flags().StringVar(&account, "account", "", "target investment account (invest only)")
	cmd.Flags().StringVar(&category, "category", "", "spending category (spend only)")
	return cmd
}

func newDecideCmd() *cobra.Command {
	var inputPath string
	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Combine guardrail and agent signals into a final decision",
		Long: `Reads a JSON document with preferences, simulation, guardrail, budgeting,
and investment fields, applies the deterministic guardrail override, and
prints the decision, consensus, and corrected guardrail analysis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("failed to read decision input %s: %w", inputPath, err)
			}
			var input struct {
				Preferences domain.Preferences       `json:"preferences"`
				Simulation  domain.SimulationResult  `json:"simulation"`
				Guardrail   policy.GuardrailAnalysis `json:"guardrail"`
				Budgeting   policy.AgentAnalysis     `json:"budgeting"`
				Investment  policy.AgentAnalysis     `json:"investment"`
			}
			if err := json.Unmarshal(data, &input); err != nil {
				return fmt.Errorf("failed to parse decision input: %w", err)
			}
			if !input.Budgeting.Recommendation.Valid() || !input.Investment.Recommendation.Valid() {
				return fmt.Errorf("unknown agent recommendation label")
			}
			outcome := policy.Evaluate(input.Preferences, input.Simulation, input.Guardrail, input.Budgeting, input.Investment)
			return printJSON(outcome)
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "path to the decision input JSON file")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func loadProfile(path string) (domain.Profile, error) {
	if path == "" {
		return domain.SampleProfile(time.Now()), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	var profile domain.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return domain.Profile{}, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return profile, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
