// Package websocket pushes machine snapshots to browser clients and
// accepts gestures from them.
//
// A central Hub owns every connection. Clients join a session with
// /ws?session=<id>; the first frame they receive is the current snapshot
// and every later snapshot published by the session's machine follows.
//
// Outgoing frames are one JSON Message each:
//
//	{"session_id":"a1b2","event":"snapshot","snapshot":{...}}
//	{"session_id":"a1b2","event":"drag_result","data":{"outcome":"moved",...}}
//	{"session_id":"a1b2","event":"error","data":{"error":"..."}}
//
// Incoming frames are gestures:
//
//	{"type":"drag","piece_id":3,"dx":120,"dy":4,"cell_width":100,"cell_height":100}
//	{"type":"press","button":"next"}
//	{"type":"release","button":"next"}
//	{"type":"tap","button":"prev"}
//
// Hub.PublishSnapshot satisfies session.Publisher. It is called while the
// machine holds its lock, so it only queues and drops when the hub is behind.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), gameService)
//	})
package websocket
