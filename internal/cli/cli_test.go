package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	derrors "github.com/ppiankov/docket/internal/errors"
	"github.com/ppiankov/docket/internal/reconcile"
	"github.com/ppiankov/docket/internal/session"
)

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"doe-2024":   "doe-2024",
		"doe/2024":   "doe_2024",
		"  a b:c  ":  "a_b_c",
		"..":         "case",
		"":           "case",
		`x\y*z?"<>|`: "x_y_z_____",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDocumentsFromFlags(t *testing.T) {
	summonsRef, sentencingRef, policeRef = "", "order.html", "report.json"
	defer func() { summonsRef, sentencingRef, policeRef = "", "", "" }()

	docs := documentsFromFlags()
	if len(docs) != 2 {
		t.Fatalf("documents = %+v", docs)
	}
	if docs[0].Source != reconcile.SourceSentencing || docs[1].Source != reconcile.SourcePolice {
		t.Errorf("documents out of priority order: %+v", docs)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"llm:", "max_chars: 100000", "legacy_echo: true"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config missing %q", want)
		}
	}
	if strings.Contains(string(data), "api_key") {
		t.Error("config must not carry an api_key entry")
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected refusal to overwrite an existing config")
	}
}

func TestRecordTranscriptSavesTurnsBeforeBadLine(t *testing.T) {
	dir := t.TempDir()
	store := session.NewStore(dir, nil)
	in := strings.NewReader(`{"role": "assistant", "text": "What type of conviction was it?"}
{"role": "user", "text": "A misdemeanor"}
{"role": "judge", "text": "order in court"}
{"role": "user", "text": "never read"}
`)

	sess, path, ended, err := recordTranscript(in, session.NewRecorder(), store)
	if derrors.CodeOf(err) != derrors.CodeInvalidRole {
		t.Fatalf("err = %v, want invalid role", err)
	}
	if !strings.Contains(err.Error(), "transcript line 3") {
		t.Errorf("error %q does not name the line", err)
	}
	if sess == nil || len(sess.Turns) != 2 || ended {
		t.Fatalf("session = %+v, ended = %v", sess, ended)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Errorf("saved file: %v", statErr)
	}
	loaded, loadErr := store.Load(sess.ID)
	if loadErr != nil || len(loaded.Turns) != 2 {
		t.Errorf("Load() = %v, %v", loaded, loadErr)
	}
}

func TestRecordTranscriptStoresNothingWithoutTurns(t *testing.T) {
	dir := t.TempDir()
	store := session.NewStore(dir, nil)

	sess, _, _, err := recordTranscript(strings.NewReader("not json\n"), session.NewRecorder(), store)
	if sess != nil || !derrors.IsInput(err) {
		t.Fatalf("recordTranscript() = %v, %v", sess, err)
	}
	if !strings.Contains(err.Error(), "nothing stored") {
		t.Errorf("error %q should say nothing was stored", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("store has %d files, want none", len(entries))
	}
}
