// Package lcd draws the 4×5 side display: glyphs for digits and rating
// letters, the level-number frame queue, the victory animation and the
// elapsed-time indicator. Every function returns a fresh [CellCount]Cell.
package lcd
