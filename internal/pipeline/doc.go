// Package pipeline runs the team-formation engine end to end.
//
// [Pipeline.Run] takes a read-only [cluster.Catalog] through the stages
// place → categories → sizes → languages → leadership → pins. Each stage
// owns the partition for its turn. After every stage the partition is
// checked for completeness, a [StageReport] is recorded, and an
// [event.StageCompletedEvent] is published on the bus.
//
// Unmet goals never fail a run. They show up in the stage stats and in the
// diagnostics computed by the report package. A configured pin that names
// an unknown cluster is skipped, logged at WARN and listed in
// [Result.PinFailures].
//
// # Usage
//
//	p, err := pipeline.New(pipeline.DefaultConfig(),
//	    pipeline.WithBus(bus),
//	    pipeline.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	result, err := p.Run(catalog)
package pipeline
