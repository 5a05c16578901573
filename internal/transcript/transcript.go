// Package transcript records spoken sequences as zstd-compressed JSON lines
// and reads them back.
package transcript

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgnsrekt/fieldspeech/pkg/speech"
	"github.com/klauspost/compress/zstd"
)

// ErrClosed is returned when writing to a closed transcript.
var ErrClosed = errors.New("transcript closed")

// Record is one spoken query.
type Record struct {
	Time     time.Time `json:"time"`
	Document string    `json:"document"`
	Reason   string    `json:"reason"`
	Unit     string    `json:"unit,omitempty"`
	Tokens   []Token   `json:"tokens"`
	Error    string    `json:"error,omitempty"`
}

// Token is the stored form of a speech.Token. Command payloads are not
// kept, only their names.
type Token struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
	Lang string `json:"lang,omitempty"`
}

var tokenKinds = map[speech.TokenKind]string{
	speech.TokenText:         "text",
	speech.TokenLanguage:     "lang",
	speech.TokenEndUtterance: "break",
	speech.TokenCommand:      "command",
}

// NewRecord builds a record for a spoken sequence.
func NewRecord(document string, reason speech.Reason, unit speech.Unit, seq speech.Sequence, err error) Record {
	r := Record{
		Time:     time.Now().UTC(),
		Document: document,
		Reason:   string(reason),
		Unit:     string(unit),
		Tokens:   make([]Token, 0, len(seq)),
	}
	for _, t := range seq {
		r.Tokens = append(r.Tokens, Token{Kind: tokenKinds[t.Kind], Text: t.Text, Lang: t.Lang})
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Sequence converts the record's tokens back into a sequence.
func (r Record) Sequence() speech.Sequence {
	seq := make(speech.Sequence, 0, len(r.Tokens))
	for _, t := range r.Tokens {
		switch t.Kind {
		case "text":
			seq = append(seq, speech.TextToken(t.Text))
		case "lang":
			seq = append(seq, speech.LanguageToken(t.Lang))
		case "break":
			seq = append(seq, speech.EndUtteranceToken())
		case "command":
			seq = append(seq, speech.CommandToken(t.Text, nil))
		}
	}
	return seq
}

// Writer appends records to a compressed stream.
type Writer struct {
	mu      sync.Mutex
	file    *os.File
	encoder *zstd.Encoder
	json    *json.Encoder
	count   int
	closed  bool
}

// NewWriter compresses records into w at the given zstd level (1-22).
func NewWriter(w io.Writer, level int) (*Writer, error) {
	if level <= 0 {
		level = 3
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	return &Writer{encoder: enc, json: json.NewEncoder(enc)}, nil
}

// Create creates the transcript file at path, with its directory.
func Create(path string, level int) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript: %w", err)
	}
	w, err := NewWriter(f, level)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.file = f
	return w, nil
}

// Write appends one record.
func (w *Writer) Write(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if err := w.json.Encode(r); err != nil {
		return fmt.Errorf("failed to write transcript record: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close flushes the compressed stream and closes the file, if the writer
// owns one.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	err := w.encoder.Close()
	if w.file != nil {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("failed to close transcript: %w", err)
	}
	return nil
}

// Read decodes every record in r.
func Read(r io.Reader) ([]Record, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	var records []Record
	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return records, fmt.Errorf("failed to decode record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("failed to read transcript: %w", err)
	}
	return records, nil
}

// Open reads the transcript file at path.
func Open(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()
	return Read(f)
}
