package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/fieldspeech/internal/cache"
	"github.com/dgnsrekt/fieldspeech/internal/markdown"
	"github.com/dgnsrekt/fieldspeech/internal/render"
	"github.com/dgnsrekt/fieldspeech/internal/transcript"
	"github.com/dgnsrekt/fieldspeech/pkg/speech"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

// reader speaks documents and prints the results.
type reader struct {
	out        io.Writer
	speaker    *speech.Speaker
	store      *cache.Store
	transcript *transcript.Writer
	styles     outputStyles

	// plain output kept for --copy
	copied strings.Builder

	started   time.Time
	documents int
	queries   int
	tokens    int
	failures  int
}

func newReader(out io.Writer) (*reader, error) {
	speaker, err := speech.NewSpeaker(render.New().Collaborators(),
		speech.WithPolicy(speechCfg.Policy()),
		speech.WithFormatConfig(speechCfg.FormatConfig()),
		speech.WithOrdering(speechCfg.SpeakerOrdering()),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create speaker: %w", err)
	}

	r := &reader{
		out:     out,
		speaker: speaker,
		store:   cache.NewStore(speechCfg.CacheConfig()),
		styles:  newOutputStyles(isTerminal),
		started: time.Now(),
	}

	if transcriptF != "" {
		w, err := transcript.Create(transcriptF, speechCfg.CompressionLevel)
		if err != nil {
			_ = r.store.Close()
			return nil, err
		}
		r.transcript = w
		log.Debug("writing transcript", "path", transcriptF)
	}

	return r, nil
}

// Close flushes the transcript and drops the caches.
func (r *reader) Close() error {
	var err error
	if r.transcript != nil {
		err = r.transcript.Close()
	}
	if cerr := r.store.Close(); err == nil {
		err = cerr
	}
	return err
}

func (r *reader) speakFile(path string) error {
	doc, err := markdown.Load(path)
	if err != nil {
		return err
	}
	return r.speakDocument(doc)
}

// speakDocument walks doc by the configured unit and prints every
// non-empty sequence.
func (r *reader) speakDocument(doc *markdown.Document) error {
	var state *speech.State
	if !noCache {
		var err error
		state, _, err = r.store.Open(doc.ID())
		if err != nil {
			return fmt.Errorf("unable to open cache: %w", err)
		}
		// a watched document is spoken again after every change
		if !watchFile {
			defer r.store.Release(doc.ID())
		}
	}

	r.documents++
	r.header(doc.ID())

	for i, pos := range doc.Positions(speechCfg.QueryUnit()) {
		doc.RecordMove(focusMoves)

		seq, err := r.speaker.SpeakPosition(pos, speech.Query{
			Cache:          state,
			Unit:           speechCfg.QueryUnit(),
			Reason:         speechCfg.QueryReason(),
			SuppressBlanks: speechCfg.SuppressBlanks,
		})
		r.record(doc.ID(), speechCfg.QueryReason(), speechCfg.QueryUnit(), seq, err)
		if err != nil {
			return fmt.Errorf("unable to speak %s at %d: %w", doc.ID(), pos.Start(), err)
		}
		r.print(fmt.Sprintf("%4d", i+1), seq)
	}
	return nil
}

// record counts the query and appends it to the transcript.
func (r *reader) record(document string, reason speech.Reason, unit speech.Unit, seq speech.Sequence, err error) {
	r.queries++
	r.tokens += len(seq)
	if err != nil {
		r.failures++
	}
	if r.transcript == nil {
		return
	}
	rec := transcript.NewRecord(document, reason, unit, seq, err)
	if werr := r.transcript.Write(rec); werr != nil {
		log.Error("unable to write transcript", "error", werr)
	}
}

func (r *reader) header(name string) {
	fmt.Fprintln(r.out, r.styles.header.Render(name))
	r.copied.WriteString(name + "\n")
}

func (r *reader) print(label string, seq speech.Sequence) {
	if len(seq) == 0 {
		return
	}
	fmt.Fprintln(r.out, r.styles.sequence(label, seq, int(width)))
	r.copied.WriteString(label + " " + seq.String() + "\n")
}

// finish copies the output and prints the summary, as requested.
func (r *reader) finish() error {
	if copyOutput {
		text := r.copied.String()
		// Copy using OSC 52
		termenv.Copy(text)
		// Copy using native system clipboard
		if err := clipboard.WriteAll(text); err != nil {
			log.Debug("native clipboard unavailable", "error", err)
		}
	}
	if showStats {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.styles.stats.Render(r.summary()))
	}
	return nil
}

func (r *reader) summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Spoke %s positions in %s documents (%s tokens) in %s\n",
		humanize.Comma(int64(r.queries)),
		humanize.Comma(int64(r.documents)),
		humanize.Comma(int64(r.tokens)),
		time.Since(r.started).Round(time.Millisecond))

	stats := r.store.Stats()
	session, _, _ := r.store.SessionInfo()
	fmt.Fprintf(&b, "Cache %s: %.0f%% hit rate, %d resets, %d released, %d open\n",
		session[:8], stats.HitRate*100, stats.Resets, stats.Releases, stats.Documents)
	for _, e := range r.store.Entries() {
		fmt.Fprintf(&b, "  %s: depth %d, %s hits, opened %s\n",
			e.Owner, e.Depth, humanize.Comma(e.Hits), humanize.Time(e.Opened))
	}

	if r.failures > 0 {
		fmt.Fprintf(&b, "Failures: %d\n", r.failures)
	}

	if r.transcript != nil {
		if info, err := os.Stat(transcriptF); err == nil {
			fmt.Fprintf(&b, "Transcript: %s, %d records, %s\n",
				transcriptF, r.transcript.Count(), humanize.Bytes(uint64(info.Size()))) //nolint:gosec
		}
	}

	b.WriteString(speech.QueryStats())
	return b.String()
}
