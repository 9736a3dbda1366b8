package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/qaform/pkg/ecosystem/tui"
	"github.com/ormasoftchile/qaform/pkg/engine"
	"github.com/ormasoftchile/qaform/pkg/forms"
	"github.com/ormasoftchile/qaform/pkg/spec"
	"github.com/ormasoftchile/qaform/pkg/wizard"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "qaform",
	Short: "Form interpretation engine",
	Long:  "qaform — interprets declarative form specifications: visibility, progress, validation, store application, and rendering.",
}

// Global session flags shared by most subcommands.
var (
	flagSpec    string
	flagForm    string
	flagContext string
	flagAnswers string
)

// session resolves the shared flags into boundary-call arguments.
type session struct {
	eng     *engine.Engine
	formID  string
	config  string // spec-config JSON ({"form_spec_json": ...} or "")
	ctx     string
	answers string
}

func newSession() (*session, error) {
	s := &session{
		eng:    engine.New(engine.Options{DefaultSpec: forms.Default}),
		formID: flagForm,
	}

	if flagSpec != "" {
		specJSON, id, err := loadSpecFile(flagSpec)
		if err != nil {
			return nil, err
		}
		cfg, err := json.Marshal(map[string]string{"form_spec_json": specJSON})
		if err != nil {
			return nil, err
		}
		s.config = string(cfg)
		if s.formID == "" {
			s.formID = id
		}
	}
	if s.formID == "" {
		s.formID = forms.DefaultID
	}

	var err error
	if s.ctx, err = jsonArg(flagContext, "{}"); err != nil {
		return nil, fmt.Errorf("invalid --context: %w", err)
	}
	if s.answers, err = jsonArg(flagAnswers, "{}"); err != nil {
		return nil, fmt.Errorf("invalid --answers: %w", err)
	}
	return s, nil
}

// storeCtx returns the context with the spec-config merged in, for the
// calls that carry the spec inside the context.
func (s *session) storeCtx() (string, error) {
	if s.config == "" {
		return s.ctx, nil
	}
	var ctx map[string]any
	if err := json.Unmarshal([]byte(s.ctx), &ctx); err != nil {
		return "", fmt.Errorf("invalid --context: %w", err)
	}
	var cfg map[string]any
	if err := json.Unmarshal([]byte(s.config), &cfg); err != nil {
		return "", err
	}
	if ctx == nil {
		ctx = map[string]any{}
	}
	for k, v := range cfg {
		ctx[k] = v
	}
	merged, err := json.Marshal(ctx)
	if err != nil {
		return "", err
	}
	return string(merged), nil
}

// loadSpecFile reads a form spec from disk and returns it as a JSON
// string plus its form id. YAML files are converted to JSON.
func loadSpecFile(path string) (string, string, error) {
	fs, err := spec.LoadFile(path)
	if err != nil {
		return "", "", err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", "", err
		}
		return string(raw), fs.ID, nil
	}
	raw, err := json.Marshal(fs)
	if err != nil {
		return "", "", err
	}
	return string(raw), fs.ID, nil
}

// jsonArg accepts inline JSON or @path to read it from a file.
func jsonArg(arg, fallback string) (string, error) {
	if arg == "" {
		return fallback, nil
	}
	if strings.HasPrefix(arg, "@") {
		raw, err := os.ReadFile(arg[1:])
		if err != nil {
			return "", err
		}
		arg = string(raw)
	}
	if !json.Valid([]byte(arg)) {
		return "", fmt.Errorf("not valid JSON")
	}
	return arg, nil
}

// emit pretty-prints a boundary response and exits non-zero on error
// payloads.
func emit(payload string) error {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(payload), &probe); err == nil && probe.Error != nil {
		return fmt.Errorf("%s", *probe.Error)
	}

	var pretty any
	if err := json.Unmarshal([]byte(payload), &pretty); err != nil {
		fmt.Println(payload)
		return nil
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		fmt.Println(payload)
		return nil
	}
	fmt.Println(string(out))
	return nil
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [form.yaml]",
	Short: "Validate a form spec file against the schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var fs *spec.FormSpec
	var errs []*spec.ValidationError
	ext := strings.ToLower(filepath.Ext(args[0]))
	if ext == ".yaml" || ext == ".yml" {
		fs, err = spec.LoadFile(args[0])
		if err != nil {
			return err
		}
		errs = spec.Validate(fs)
	} else {
		fs, errs = spec.ValidateBytes(raw)
	}

	if len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n\n", len(errs))
		for i, e := range errs {
			fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
			}
		}
		return fmt.Errorf("validation failed with %d error(s)", len(errs))
	}
	fmt.Printf("✓ %s is valid (%d questions)\n", fs.ID, len(fs.Questions))
	return nil
}

// --- describe ---

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the full form specification",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		return emit(s.eng.Describe(s.formID, s.config))
	},
}

// --- schema ---

var schemaSelf bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the answer schema scoped to visible questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaSelf {
			sch, err := spec.GenerateJSONSchema()
			if err != nil {
				return err
			}
			fmt.Println(string(sch))
			return nil
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		return emit(s.eng.AnswerSchema(s.formID, s.config, s.ctx))
	},
}

// --- examples ---

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Print one plausible example answer per visible question",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		return emit(s.eng.ExampleAnswers(s.formID, s.config, s.ctx))
	},
}

// --- check ---

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate an answer set against the form",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		return emit(s.eng.ValidateAnswers(s.formID, s.config, s.answers))
	},
}

// --- next ---

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the next unanswered visible question and progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx, err := s.storeCtx()
		if err != nil {
			return err
		}
		return emit(s.eng.Next(s.formID, ctx, s.answers))
	},
}

// --- apply-store ---

var applyStoreCmd = &cobra.Command{
	Use:   "apply-store",
	Short: "Apply the form's store operations and print the updated context",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx, err := s.storeCtx()
		if err != nil {
			return err
		}
		return emit(s.eng.ApplyStore(s.formID, ctx, s.answers))
	},
}

// --- render ---

var renderFormat string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the form as text, JSON UI, or an Adaptive Card",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		switch renderFormat {
		case "text":
			fmt.Println(s.eng.RenderText(s.formID, s.config, s.ctx, s.answers))
			return nil
		case "card":
			return emit(s.eng.RenderCard(s.formID, s.config, s.ctx, s.answers))
		case "json":
			return emit(s.eng.RenderJSONUI(s.formID, s.config, s.ctx, s.answers))
		default:
			return fmt.Errorf("unknown format %q: use text, json, or card", renderFormat)
		}
	},
}

// --- submit ---

var (
	submitQuestion string
	submitValue    string
	submitAll      bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit one answer (--question/--value) or the whole set (--all)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		if submitAll {
			return emit(s.eng.SubmitAll(s.formID, s.config, s.ctx, s.answers))
		}
		if submitQuestion == "" || submitValue == "" {
			return fmt.Errorf("either --all or both --question and --value are required")
		}
		if !json.Valid([]byte(submitValue)) {
			// Bare strings are common on the command line; quote them.
			quoted, err := json.Marshal(submitValue)
			if err != nil {
				return err
			}
			submitValue = string(quoted)
		}
		return emit(s.eng.SubmitPatch(s.formID, s.config, s.ctx, s.answers, submitQuestion, submitValue))
	},
}

// --- wizard ---

var wizardDebug bool

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Fill the form interactively on the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		verbosity := wizard.Clean
		if wizardDebug {
			verbosity = wizard.Debug
		}
		w := &wizard.Wizard{
			Engine:     s.eng,
			FormID:     s.formID,
			ConfigJSON: s.config,
			CtxJSON:    s.ctx,
			Verbosity:  verbosity,
			Out:        os.Stdout,
		}
		_, err = w.Run()
		return err
	},
}

// --- tui ---

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Fill the form in a full-screen terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		m := tui.NewModel(s.eng, s.formID, s.config, s.ctx)
		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("qaform %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSpec, "spec", "", "Path to a form spec file (JSON or YAML); omit to use the built-in example form")
	rootCmd.PersistentFlags().StringVar(&flagForm, "form", "", "Form id (defaults to the spec's id)")
	rootCmd.PersistentFlags().StringVar(&flagContext, "context", "", "Context JSON, or @path to read it from a file")
	rootCmd.PersistentFlags().StringVar(&flagAnswers, "answers", "", "Answer set JSON, or @path to read it from a file")

	schemaCmd.Flags().BoolVar(&schemaSelf, "self", false, "Print the JSON Schema of the form spec format itself")
	renderCmd.Flags().StringVar(&renderFormat, "format", "text", "Output format: text, json, or card")
	submitCmd.Flags().StringVar(&submitQuestion, "question", "", "Question id to answer")
	submitCmd.Flags().StringVar(&submitValue, "value", "", "Answer value as JSON (bare strings are auto-quoted)")
	submitCmd.Flags().BoolVar(&submitAll, "all", false, "Submit the whole --answers set at once")
	wizardCmd.Flags().BoolVar(&wizardDebug, "debug", false, "Show status, visible questions, and error details")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(applyStoreCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(versionCmd)
}
