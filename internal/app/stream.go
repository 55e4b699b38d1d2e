package app

import (
	"context"
	"fmt"
	"io"

	"github.com/jacoelho/dotjson/internal/ratelimit"
	"github.com/jacoelho/dotjson/internal/stream"
	"github.com/jacoelho/dotjson/internal/transform"
)

// runStream decodes the input one document at a time, applies the
// configured transforms at the configured rate and re-encodes the result.
// Output is always framed JSON; -format does not apply. On failure the
// documents already written are left without the closing suffix.
func (a *App) runStream(ctx context.Context) error {
	t, err := a.streamTransform()
	if err != nil {
		return err
	}

	r, err := a.open()
	if err != nil {
		return err
	}

	dec, err := stream.NewDecoder(r,
		stream.WithCoercer(a.coercer),
		stream.WithLogger(a.logger),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", a.inputName(), err)
	}
	defer dec.Close()

	docs := transform.Apply(t, a.coercer, dec.All())
	docs = ratelimit.Throttle(ctx, ratelimit.New(a.config.Rate), docs)

	framing := a.config.Framing
	enc := stream.NewEncoder2(docs, a.coercer.Marshal,
		stream.WithPrefix(framing.Prefix),
		stream.WithSeparator(framing.Separator),
		stream.WithSuffix(framing.Suffix),
		stream.WithLogger(a.logger),
	)
	defer enc.Close()

	if _, err := io.Copy(a.output, enc); err != nil {
		return err
	}

	a.logger.Info("stream complete", "documents", enc.Count())
	return nil
}

func (a *App) streamTransform() (transform.Transform, error) {
	var steps []transform.Transform

	for _, assignment := range a.config.Sets {
		t, err := transform.ParseAssignment(assignment)
		if err != nil {
			return nil, err
		}
		steps = append(steps, t)
	}
	for _, path := range a.config.Removes {
		steps = append(steps, transform.Remove(path))
	}
	if a.config.IDPath != "" {
		steps = append(steps, transform.AssignID(a.config.IDPath))
	}
	if a.config.StampPath != "" {
		steps = append(steps, transform.Stamp(a.config.StampPath))
	}

	return transform.Chain(steps...), nil
}
