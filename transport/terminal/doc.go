// Package terminal is a local Super Slide client built on tcell.
//
// The board is drawn on the left with the exit gap in its bottom edge. The
// 4×5 display and the prev, next and reset buttons sit on the right. Mouse
// presses on a button are held until release, so holding a button for the
// hold threshold triggers its long-press action. Dragging a piece and
// releasing slides it by the drag distance measured in board cells.
//
// Keyboard controls:
//
//	tab          select the next movable piece
//	arrows       slide the selected piece one cell (shift for two)
//	p n r        tap prev, next, reset
//	P N R        long-press prev, next, reset
//	q, esc       quit
//
// Tones for refused moves, countdown ticks, victory and the score screen are
// synthesized with beep when sound is enabled. The resume level is kept in a
// local JSON file.
package terminal
