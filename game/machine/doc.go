// Package machine is the Game State Machine for one Super Slide session.
//
// A Machine owns the session state: the level, the board, the challenge flag
// and the current Phase. Phase is a sealed set of variants, one per screen
// (level-preview, level-number, challenge-intro, countdown, timer, victory,
// score), each carrying only the fields that screen needs.
//
// Events arrive from three places: gestures (DragEnd, Press, Release, Tap),
// timers the machine scheduled itself, and lifecycle calls (Mount, Close).
// Every event is applied under the machine's lock as one transition, and the
// resulting Snapshot is handed to the Sink before the lock is released.
//
// Timers:
//
// Each timer role (holds, intro, countdown, elapsed tick, animation, score
// dwell, shake) has its own handle. Scheduling a role cancels the previous
// instance of that role, entering a screen cancels the roles that do not
// apply to it, and a firing whose generation no longer matches is dropped.
// Close cancels everything.
//
// Usage:
//
//	m, err := machine.New(machine.Options{
//		Level:     1,
//		Catalog:   levels,
//		Scheduler: machine.NewRealScheduler(),
//		Sink:      machine.SinkFunc(render),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	m.Mount()
//	defer m.Close()
//
//	m.Press(machine.ButtonNext) // hold three seconds to start a challenge
package machine
