package session

import (
	"strings"
	"testing"

	derrors "github.com/ppiankov/docket/internal/errors"
	"github.com/ppiankov/docket/internal/model"
)

const transcriptLines = `{"role": "assistant", "text": "What type of conviction was it?"}

{"role": "user", "text": "felony"}
{"role": "user", "text": "   "}
{"role": "assistant", "text": "When were you convicted?"}
{"role": "user", "text": "q"}
{"role": "user", "text": "after the end"}
`

func TestReadTurns(t *testing.T) {
	turns, err := ReadTurns(strings.NewReader(transcriptLines))
	if err != nil {
		t.Fatalf("ReadTurns() error = %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("turns = %+v, want 3", turns)
	}
	if turns[1].Role != model.RoleUser || turns[1].Text != "felony" || turns[1].Ordinal != 1 {
		t.Errorf("turn 1 = %+v", turns[1])
	}
	if turns[2].Ordinal != 2 {
		t.Errorf("turn 2 ordinal = %d", turns[2].Ordinal)
	}
}

func TestReadTurnsErrors(t *testing.T) {
	_, err := ReadTurns(strings.NewReader("{\"role\": \"user\", \"text\": \"ok\"}\nnot json\n"))
	if derrors.CodeOf(err) != derrors.CodeInvalidSession {
		t.Errorf("malformed line: err = %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line: %v", err)
	}

	_, err = ReadTurns(strings.NewReader(`{"role": "judge", "text": "order"}`))
	if derrors.CodeOf(err) != derrors.CodeInvalidRole {
		t.Errorf("unknown role: err = %v", err)
	}
}

func TestReplay(t *testing.T) {
	r := NewRecorder(WithClock(newClock().now))
	ended, err := Replay(strings.NewReader(transcriptLines), r)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if !ended {
		t.Error("expected end signal to be seen")
	}

	sess, err := r.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.Turns) != 3 {
		t.Errorf("recorded %d turns, want 3", len(sess.Turns))
	}
	if ans, ok := sess.Questions.Get(model.SlotConvictionType); !ok || ans.Value != "felony" {
		t.Errorf("questions = %+v", sess.Questions)
	}
}

func TestReplayWithoutEndSignal(t *testing.T) {
	r := NewRecorder()
	ended, err := Replay(strings.NewReader(`{"role": "assistant", "text": "Hello"}`), r)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if ended {
		t.Error("no end signal in input")
	}
	if n := len(r.Snapshot().Turns); n != 1 {
		t.Errorf("turns = %d, want 1", n)
	}
}
