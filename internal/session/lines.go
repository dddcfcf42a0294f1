package session

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	derrors "github.com/ppiankov/docket/internal/errors"
	"github.com/ppiankov/docket/internal/model"
)

// EndSignal is the user utterance that ends an intake conversation. It is
// never recorded as a turn.
const EndSignal = "q"

const maxLineBytes = 1 << 20

// line is one utterance of a transcript stream: {"role": "...", "text": "..."}
type line struct {
	Role model.Role `json:"role"`
	Text string     `json:"text"`
}

// ReadTurns decodes a JSON-lines transcript up to the end signal or EOF.
// Blank lines and blank utterances are skipped, as the recorder does.
func ReadTurns(r io.Reader) ([]model.Turn, error) {
	var turns []model.Turn
	err := scanLines(r, func(l line) error {
		if !l.Role.Valid() {
			return derrors.Input(derrors.CodeInvalidRole, "unknown role %q", l.Role)
		}
		if strings.TrimSpace(l.Text) != "" {
			turns = append(turns, model.Turn{Role: l.Role, Text: l.Text, Ordinal: len(turns)})
		}
		return nil
	})
	if errors.Is(err, errEndSignal) {
		err = nil
	}
	return turns, err
}

// Replay feeds a JSON-lines transcript into rec until the end signal or
// EOF. It reports whether the end signal was seen.
func Replay(r io.Reader, rec *Recorder) (bool, error) {
	ended := false
	err := scanLines(r, func(l line) error {
		return rec.Append(l.Role, l.Text)
	})
	if errors.Is(err, errEndSignal) {
		ended, err = true, nil
	}
	return ended, err
}

var errEndSignal = errors.New("end signal")

func scanLines(r io.Reader, fn func(line) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	n := 0
	for scanner.Scan() {
		n++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var l line
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			return derrors.Input(derrors.CodeInvalidSession, "transcript line %d: %v", n, err)
		}
		if l.Role == model.RoleUser && strings.TrimSpace(l.Text) == EndSignal {
			return errEndSignal
		}
		if err := fn(l); err != nil {
			return fmt.Errorf("transcript line %d: %w", n, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	return nil
}
