package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	derrors "github.com/ppiankov/docket/internal/errors"
	"github.com/ppiankov/docket/internal/model"
	"github.com/ppiankov/docket/internal/pipeline"
	"github.com/ppiankov/docket/internal/session"
	"github.com/ppiankov/docket/internal/transcript"
)

var (
	sessionInput    string
	latestAnswers   bool
	noLegacyEcho    bool
	sessionListJSON bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Record and inspect intake sessions",
}

var sessionRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record an intake conversation from a JSON-lines transcript",
	Long: `Record reads one utterance per line, {"role": "assistant"|"user", "text": "..."},
from --input or stdin. A user line "q" ends the conversation. The closed
session is stored with its typed answers and extracted facts.

Example:
  docket session record --input call.jsonl
  voice-bridge | docket session record`,
	Args: cobra.NoArgs,
	RunE: runSessionRecord,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id|file>",
	Short: "Print a stored session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		sess, err := store.Load(args[0])
		if err != nil {
			return err
		}
		return pipeline.NewRenderer(cmd.OutOrStdout()).RenderJSON(sess, "")
	},
}

var sessionAnswersCmd = &cobra.Command{
	Use:   "answers <id|file>",
	Short: "Print the typed intake answers of a session or transcript",
	Long: `Answers segments a conversation into the intake questions and normalizes
each answer. The argument is a stored session id, a session file, or a
JSON-lines transcript (.jsonl).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		answers, err := answersFor(args[0])
		if err != nil {
			return err
		}
		return pipeline.NewRenderer(cmd.OutOrStdout()).RenderJSON(answers, "")
	},
}

var sessionLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the most recent session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		sess, err := store.Latest()
		if err != nil {
			return err
		}

		r := pipeline.NewRenderer(cmd.OutOrStdout())
		if latestAnswers {
			return r.RenderJSON(pipeline.SessionAnswers(sess), "")
		}
		return r.RenderJSON(sess, "")
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionRecordCmd, sessionListCmd, sessionShowCmd, sessionAnswersCmd, sessionLatestCmd)

	sessionRecordCmd.Flags().StringVarP(&sessionInput, "input", "i", "-", "transcript file (JSON lines), - for stdin")
	sessionRecordCmd.Flags().BoolVar(&noLegacyEcho, "no-legacy-echo", false, "do not store the positional q1..q5 answer echo")
	sessionListCmd.Flags().BoolVar(&sessionListJSON, "json", false, "print the list as JSON")
	sessionLatestCmd.Flags().BoolVar(&latestAnswers, "answers", false, "print only the typed answers")
}

func runSessionRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	in, closeInput, err := openInput(sessionInput)
	if err != nil {
		return err
	}
	defer closeInput()

	rec := session.NewRecorder(session.WithLegacyEcho(cfg.Sessions.LegacyEcho && !noLegacyEcho))
	progressf("⚙️  Recording session %s\n", rec.ID())

	store := session.NewStore(cfg.Sessions.Dir, logger)
	sess, path, ended, err := recordTranscript(in, rec, store)
	if sess == nil {
		return err
	}
	if err == nil && !ended {
		progressf("  input ended without %q, closing session\n", session.EndSignal)
	}

	progressf("✓ Recorded %d turns, %d answers\n", len(sess.Turns), len(sess.Questions))
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", sess.ID, path)
	return err
}

// recordTranscript replays in into rec, then closes and saves the session.
// A bad line stops the replay, but the turns read before it are still saved
// and the returned error names the line. The session is nil when nothing
// was stored.
func recordTranscript(in io.Reader, rec *session.Recorder, store *session.Store) (*model.Session, string, bool, error) {
	ended, replayErr := session.Replay(in, rec)
	if replayErr != nil && len(rec.Snapshot().Turns) == 0 {
		return nil, "", false, fmt.Errorf("nothing stored: %w", replayErr)
	}

	sess, err := rec.Close()
	if err != nil {
		return nil, "", ended, err
	}
	path, err := store.Save(sess)
	if err != nil {
		return nil, "", ended, err
	}

	if replayErr != nil {
		return sess, path, ended, fmt.Errorf("session %s saved with the %d turns read before the error: %w",
			sess.ID, len(sess.Turns), replayErr)
	}
	return sess, path, ended, nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	summaries, err := store.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if sessionListJSON {
		return pipeline.NewRenderer(out).RenderJSON(summaries, "")
	}
	if len(summaries) == 0 {
		fmt.Fprintf(os.Stderr, "No sessions in %s\n", store.Dir())
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(out, "%-36s  %-6s  %3d turns  %s\n", s.ID, s.State, s.Turns, s.StartedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// answersFor resolves a session reference or a transcript file to typed answers
func answersFor(ref string) (model.Answers, error) {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".jsonl":
		f, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("open transcript: %w", err)
		}
		defer func() { _ = f.Close() }()

		turns, err := session.ReadTurns(f)
		if err != nil {
			return nil, err
		}
		return transcript.Analyze(turns), nil

	case "", ".json":
		store, err := openStore()
		if err != nil {
			return nil, err
		}
		sess, err := store.Load(ref)
		if err != nil {
			return nil, err
		}
		return pipeline.SessionAnswers(sess), nil

	default:
		return nil, derrors.Input(derrors.CodeUnsupportedFile,
			"unsupported transcript %s: want a session id, a session .json or a .jsonl transcript", ref)
	}
}

func openStore() (*session.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(verbose)
	if err != nil {
		return nil, err
	}
	return session.NewStore(cfg.Sessions.Dir, logger), nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
