package main

import (
	"fmt"
	"os"

	"github.com/dgnsrekt/fieldspeech/internal/script"
	"github.com/dgnsrekt/fieldspeech/pkg/speech"
	"github.com/spf13/cobra"
)

var strictScripts bool

var replayCmd = &cobra.Command{
	Use:     "replay SCRIPT...",
	Short:   "Speak the queries of event scripts",
	Long:    paragraph(fmt.Sprintf("\n%s the queries of one or more event scripts against a shared cache and print what is spoken for each.", keyword("Replay"))),
	Example: paragraph("fieldspeech replay scenario.fs\nfieldspeech replay --strict a.fs b.fs"),
	Args:    cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		r, err := newReader(os.Stdout)
		if err != nil {
			return err
		}
		defer r.Close() //nolint:errcheck

		for _, path := range args {
			s, err := script.Load(expandPath(path), script.Options{Strict: strictScripts})
			if err != nil {
				return err
			}
			if err := r.replay(s); err != nil {
				return err
			}
		}
		return r.finish()
	},
}

func init() {
	replayCmd.Flags().BoolVar(&strictScripts, "strict", false, "reject roles the renderer does not know")
}

// replay speaks every query of s in order. Queries against the same
// document share its cache unless caching is off. The caches are released
// when the script ends.
func (r *reader) replay(s *script.Script) error {
	r.documents++
	r.header(s.Name)

	opened := map[string]bool{}
	defer func() {
		for id := range opened {
			r.store.Release(id)
		}
	}()

	for _, q := range s.Queries {
		var state *speech.State
		if !noCache && !q.NoCache {
			var err error
			state, _, err = r.store.Open(q.Doc.ID())
			if err != nil {
				return fmt.Errorf("unable to open cache: %w", err)
			}
			opened[q.Doc.ID()] = true
		}

		query := speech.Query{
			Cache:             state,
			Unit:              q.Unit,
			Reason:            q.Reason,
			OnlyInitialFields: q.OnlyInitialFields,
			SuppressBlanks:    q.SuppressBlanks,
		}
		if q.Prefix != "" {
			prefix := speech.TextToken(q.Prefix)
			query.Prefix = &prefix
		}

		seq, err := r.speaker.SpeakPosition(q, query)
		r.record(q.Doc.ID(), q.Reason, q.Unit, seq, err)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", s.Name, q.Line, err)
		}
		r.print(fmt.Sprintf("%4d", q.Line), seq)
	}
	return nil
}
