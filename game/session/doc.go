// Package session keeps the live game sessions of a server.
//
// Each session owns one state machine built from the shared level catalog
// and scheduler. The manager wires the machine's outputs: snapshots go to a
// Publisher (the WebSocket hub), finished challenges become pending runs on
// the session, and a long-press of the previous button records the resume
// level. With a SessionPersistence configured those changes are written to
// disk, one JSON file per session:
//
//	persistence, err := session.NewFilePersistence("sessions")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManager(session.Options{
//		Catalog:     levels,
//		Publisher:   hub,
//		Persistence: persistence,
//	})
//	sess, err := manager.Create("", 1)
//
// A restored session starts on the preview of its resume level with its
// pending runs intact; the board itself is not persisted.
//
// Session IDs are 4 hex characters when generated, case-insensitive, and
// limited to letters, digits, '-' and '_' so they double as file names.
package session
