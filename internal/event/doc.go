// Package event provides a pub-sub event bus that lets the pipeline report
// progress without knowing who listens.
//
// The pipeline publishes; the metrics collector, the CLI progress output and
// watch mode subscribe. Neither side imports the other.
//
// # Main Types
//
//   - [Event]: Interface that all events implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub dispatcher, safe for concurrent use
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// Run Lifecycle:
//   - [RunStartedEvent]: before the first stage
//   - [StageCompletedEvent]: after each stage, carrying the stage's stats
//   - [PinFailedEvent]: a configured pin named an unknown cluster
//   - [RunCompletedEvent]: after the last stage, with partition quality figures
//
// Watch:
//   - [InputChangedEvent]: the watched input file changed
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	bus.Subscribe(event.TypeStageCompleted, func(e event.Event) {
//	    done := e.(event.StageCompletedEvent)
//	    fmt.Printf("%s: %d moves\n", done.Stage, done.Moves)
//	})
//
//	bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("event %s at %v", e.EventType(), e.Timestamp())
//	})
//
// Handlers are called synchronously. A panicking handler is recovered and
// logged; remaining handlers still run.
package event
