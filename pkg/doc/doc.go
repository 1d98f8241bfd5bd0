// Package doc defines the document model consumed by the layout core:
// styled runs, paragraph and table blocks, and the flat document-position
// coordinate space.
//
// A document position is a single monotonically increasing integer counted
// once per character, per tab, per line break, and per image, across the
// whole document in run order. It is the only coordinate exchanged with the
// surrounding editor (selection, caret, commands).
package doc
